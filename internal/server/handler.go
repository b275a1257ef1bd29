package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"github.com/reoring/dashschema"
	"github.com/reoring/dashschema/catalog"
	"github.com/reoring/dashschema/wizard"
)

// maxBody bounds request bodies.
const maxBody = 4 << 20

type schemaHandler struct {
	catalog  *catalog.Catalog
	build    func(catalog.Options) (*catalog.Catalog, error)
	maxDepth int
	validate *validator.Validate
}

type schemaSummary struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

type listResponse struct {
	Schemas    []schemaSummary   `json:"schemas"`
	GraphTypes map[string]string `json:"graph_types"`
}

// List returns the schema names with their root titles.
func (h *schemaHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.catalog.Names()
	out := listResponse{Schemas: make([]schemaSummary, 0, len(names)), GraphTypes: h.catalog.GraphTypes()}
	for _, n := range names {
		idx, err := h.catalog.Index(n)
		if err != nil {
			writeError(w, r, err, n)
			return
		}
		out.Schemas = append(out.Schemas, schemaSummary{Name: n, Title: idx.Root().Title})
	}
	writeJSON(w, r, http.StatusOK, out)
}

// Get returns the schema document.
func (h *schemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	raw, err := h.catalog.Raw(name)
	if err != nil {
		writeError(w, r, err, name)
		return
	}
	writeRaw(w, r, http.StatusOK, raw)
}

type searchResponse struct {
	Keywords []string        `json:"keywords"`
	Results  []wizard.Result `json:"results"`
}

// Search matches the q parameters (repeatable, white space separated)
// against node names and descriptions.
func (h *schemaHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	idx, err := h.catalog.Index(name)
	if err != nil {
		writeError(w, r, err, name)
		return
	}
	view := wizard.NewSearchView(idx)
	if err := view.Run(strings.Join(r.URL.Query()["q"], " ")); err != nil {
		writeError(w, r, err, name)
		return
	}
	writeJSON(w, r, http.StatusOK, searchResponse{Keywords: view.Keywords(), Results: view.Results()})
}

type renderResponse struct {
	Path    string `json:"path"`
	Display string `json:"display"`
}

// Render replaces path segments with node titles.
func (h *schemaHandler) Render(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	idx, err := h.catalog.Index(name)
	if err != nil {
		writeError(w, r, err, name)
		return
	}
	path := r.URL.Query().Get("path")
	display, err := idx.RenderPath(path)
	if err != nil {
		writeError(w, r, err, name)
		return
	}
	writeJSON(w, r, http.StatusOK, renderResponse{Path: path, Display: display})
}

type describeResponse struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Describe reports the descriptive keywords of the node at path.
func (h *schemaHandler) Describe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	idx, err := h.catalog.Index(name)
	if err != nil {
		writeError(w, r, err, name)
		return
	}
	path := r.URL.Query().Get("path")
	desc, err := idx.Describe(path)
	if err != nil {
		writeError(w, r, err, name)
		return
	}
	writeJSON(w, r, http.StatusOK, describeResponse{Path: path, Description: desc})
}

type buildRequest struct {
	DataSources []string `json:"data_sources" validate:"dive,required"`
	Columns     []string `json:"columns"      validate:"dive,required"`
}

// Build returns the editor document rebuilt with the posted enumerations.
func (h *schemaHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, parseIssue(err), "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, dashschema.Issue{Code: dashschema.CodeInvalidArgument, Message: err.Error()}, "")
		return
	}
	c, err := h.build(catalog.Options{DataSources: req.DataSources, Columns: req.Columns, MaxDepth: h.maxDepth})
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	doc, err := c.Document()
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeRaw(w, r, http.StatusOK, doc)
}

type issueBody struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type validateResponse struct {
	Valid  bool        `json:"valid"`
	Issues []issueBody `json:"issues,omitempty"`
}

// Validate checks the request body against the schema.
func (h *schemaHandler) Validate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, r, parseIssue(err), name)
		return
	}
	err = h.catalog.Validate(name, body)
	if err == nil {
		writeJSON(w, r, http.StatusOK, validateResponse{Valid: true})
		return
	}
	if dashschema.CodeOf(err) != dashschema.CodeSchemaViolation {
		writeError(w, r, err, name)
		return
	}
	iss, _ := dashschema.AsIssues(err)
	out := validateResponse{Issues: make([]issueBody, 0, len(iss))}
	for _, it := range iss {
		out.Issues = append(out.Issues, issueBody{Path: it.Path, Code: it.Code, Message: it.Message})
	}
	writeJSON(w, r, http.StatusUnprocessableEntity, out)
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return gojson.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
}

func parseIssue(err error) error {
	return dashschema.Issue{Code: dashschema.CodeParseError, Message: err.Error(), Cause: err}
}
