package wizard

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/reoring/dashschema"
)

// Wizard server endpoints, relative to its base URL.
const (
	EndpointLayout        = "/"
	EndpointGraphic       = "/graphic"
	EndpointMainSave      = "/main/save"
	EndpointGraphicSave   = "/graphic/save"
	EndpointUpdateSchemas = "/graphic/update_schemas"
	EndpointAdmin         = "/admin"
	EndpointDashboard     = "/dashboard/"
)

// Form fields shared by several commands.
const (
	fieldModification = "modification"
	fieldPageID       = "page_id"
	fieldGraphic      = "graphic"
	fieldStatus       = "graphic_status"
	fieldWebpageLabel = "webpage_label"
	fieldTitle        = "title"
	fieldBriefDesc    = "brief_desc"
	fieldDataBackend  = "data_backend"
	fieldProcess      = "process"
	fieldDataSources  = "data_sources"

	metaInfoKey = "graphic_meta_info"
)

// GraphicStatus tells the graphic editor where its config comes from.
type GraphicStatus string

const (
	StatusNew  GraphicStatus = "new"
	StatusOld  GraphicStatus = "old"
	StatusCopy GraphicStatus = "copy"
)

// Modification is a layout change on the wizard's landing page.
type Modification string

const (
	AddPage       Modification = "add_page"
	DeletePage    Modification = "delete_page"
	DeleteGraphic Modification = "delete_graphic"
)

// Upload states of the admin panel.
const (
	UploadActive   = "active"
	UploadInactive = "inactive"
)

var validate = validator.New()

// check runs the struct rules of cmd and reports failures as invalid
// argument issues keyed by field namespace.
func check(cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var iss dashschema.Issues
	for _, fe := range verrs {
		iss = dashschema.AppendIssues(iss, dashschema.Issue{
			Path:    fe.Namespace(),
			Code:    dashschema.CodeInvalidArgument,
			Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
			Params:  map[string]any{"field": fe.Field(), "rule": fe.Tag(), "param": fe.Param()},
		})
	}
	return iss
}

func invalid(path, msg string) error {
	return dashschema.Issue{Path: path, Code: dashschema.CodeInvalidArgument, Message: msg}
}

// Site holds the main config fields every landing page form carries along.
type Site struct {
	Title       string
	BriefDesc   string
	DataBackend string `validate:"omitempty,oneof=psql local_csv"`
}

func (s Site) encode(v url.Values) {
	v.Set(fieldTitle, s.Title)
	v.Set(fieldBriefDesc, s.BriefDesc)
	v.Set(fieldDataBackend, s.DataBackend)
}

// EditGraphic opens the graphic editor for a graphic of a page.
type EditGraphic struct {
	PageID  int           `validate:"min=0"`
	Graphic string        `validate:"required_unless=Status new"`
	Status  GraphicStatus `validate:"required,oneof=new old copy"`
	Site    Site
}

func (c EditGraphic) Validate() error { return check(c) }

// Form encodes the command for EndpointGraphic.
func (c EditGraphic) Form() (url.Values, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	v := url.Values{}
	v.Set(fieldStatus, string(c.Status))
	v.Set(fieldPageID, strconv.Itoa(c.PageID))
	v.Set(fieldGraphic, c.Graphic)
	c.Site.encode(v)
	return v, nil
}

// Page is one entry of the dashboard layout.
type Page struct {
	WebpageLabel       string   `json:"webpage_label"`
	URLEndpoint        string   `json:"url_endpoint"`
	GraphicConfigFiles []string `json:"graphic_config_files"`
}

// ModifyLayout adds a page, deletes a page, or removes a graphic from a page.
// PageID is ignored by AddPage.
type ModifyLayout struct {
	Modification Modification `validate:"required,oneof=add_page delete_page delete_graphic"`
	PageID       int
	Graphic      string `validate:"required_if=Modification delete_graphic"`
	WebpageLabel string `validate:"required_if=Modification add_page"`
	Site         Site
}

func (c ModifyLayout) Validate() error {
	if err := check(c); err != nil {
		return err
	}
	switch c.Modification {
	case AddPage:
		if SanitizeLabel(c.WebpageLabel) == "" {
			return invalid("ModifyLayout.WebpageLabel", "label has no usable characters")
		}
	default:
		if c.PageID < 0 {
			return invalid("ModifyLayout.PageID", "page id must not be negative")
		}
	}
	return nil
}

// Form encodes the command for EndpointLayout.
func (c ModifyLayout) Form() (url.Values, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	pageID := c.PageID
	if c.Modification == AddPage {
		pageID = -1
	}
	v := url.Values{}
	v.Set(fieldModification, string(c.Modification))
	v.Set(fieldPageID, strconv.Itoa(pageID))
	v.Set(fieldGraphic, c.Graphic)
	v.Set(fieldWebpageLabel, c.WebpageLabel)
	c.Site.encode(v)
	return v, nil
}

// Apply performs the modification on a copy of pages.
func (c ModifyLayout) Apply(pages []Page) ([]Page, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := slices.Clone(pages)
	if c.Modification == AddPage {
		return append(out, Page{
			WebpageLabel:       c.WebpageLabel,
			URLEndpoint:        SanitizeLabel(c.WebpageLabel),
			GraphicConfigFiles: []string{},
		}), nil
	}
	if c.PageID >= len(out) {
		return nil, dashschema.Issue{
			Code:    dashschema.CodeNodeNotFound,
			Path:    strconv.Itoa(c.PageID),
			Message: "no such page",
		}
	}
	switch c.Modification {
	case DeletePage:
		out = slices.Delete(out, c.PageID, c.PageID+1)
	case DeleteGraphic:
		files := out[c.PageID].GraphicConfigFiles
		i := slices.Index(files, c.Graphic)
		if i < 0 {
			return nil, dashschema.Issue{
				Code:    dashschema.CodeNodeNotFound,
				Path:    strconv.Itoa(c.PageID),
				Message: "graphic not on page",
				Params:  map[string]any{"graphic": c.Graphic},
			}
		}
		out[c.PageID].GraphicConfigFiles = slices.Delete(slices.Clone(files), i, i+1)
	}
	return out, nil
}

// ResetSelectors clears the selector state of one graphic on a dashboard
// page. The empty process field marks the request as a reset.
type ResetSelectors struct {
	Page      string `validate:"required"`
	GraphicID string `validate:"required"`
}

func (c ResetSelectors) Validate() error { return check(c) }

// Endpoint is the dashboard page the reset is posted to.
func (c ResetSelectors) Endpoint() string { return EndpointDashboard + url.PathEscape(c.Page) }

// Anchor is the fragment the page scrolls back to after the reset.
func (c ResetSelectors) Anchor() string { return "#" + c.GraphicID }

// Form encodes the command for Endpoint.
func (c ResetSelectors) Form() (url.Values, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return url.Values{fieldProcess: {""}}, nil
}

// SaveMain stores the main config edited in the main config editor.
type SaveMain struct {
	Config gojson.RawMessage `validate:"required"`
}

func (c SaveMain) Validate() error {
	if err := check(c); err != nil {
		return err
	}
	if !gjson.ValidBytes(c.Config) || !gjson.ParseBytes(c.Config).IsObject() {
		return invalid("SaveMain.Config", "config must be a JSON object")
	}
	return nil
}

// Body encodes the command for EndpointMainSave.
func (c SaveMain) Body() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.Config, nil
}

// SaveGraphic stores a graphic edited in the graphic editor. Config is the
// editor's component form: graphic_meta_info, plotly, visualization and
// selector objects.
type SaveGraphic struct {
	PageID      int               `json:"page_id"        validate:"min=0"`
	Config      gojson.RawMessage `json:"config_dict"    validate:"required"`
	GraphicPath string            `json:"graphic_path"   validate:"required_if=Status old"`
	Status      GraphicStatus     `json:"graphic_status" validate:"required,oneof=new old copy"`
}

func (c SaveGraphic) Validate() error {
	if err := check(c); err != nil {
		return err
	}
	if !gjson.ValidBytes(c.Config) || !gjson.ParseBytes(c.Config).IsObject() {
		return invalid("SaveGraphic.Config", "config must be a JSON object")
	}
	return nil
}

// Body encodes the command for EndpointGraphicSave.
func (c SaveGraphic) Body() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return gojson.Marshal(c)
}

// Title returns the graphic title from the config.
func (c SaveGraphic) Title() string {
	return gjson.GetBytes(c.Config, metaInfoKey+"."+fieldTitle).String()
}

// Filename returns the file the graphic is written to. Existing graphics
// keep their path; new graphics and copies get a fresh name from the title.
func (c SaveGraphic) Filename(exists func(name string) bool) (string, error) {
	if c.Status == StatusOld {
		return c.GraphicPath, nil
	}
	return GraphicFilename(c.Title(), exists)
}

// UpdateSchemas asks for the graphic schemas restricted to the columns of
// the given data sources.
type UpdateSchemas struct {
	DataSources []string `validate:"required,min=1,dive,required"`
}

func (c UpdateSchemas) Validate() error { return check(c) }

// Body encodes the command for EndpointUpdateSchemas.
func (c UpdateSchemas) Body() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return gojson.Marshal(c.DataSources)
}

// UploadActivation switches uploads of a data source on or off in the admin
// panel. Uploads maps upload ids to their active state.
type UploadActivation struct {
	DataSource string          `validate:"required"`
	Uploads    map[string]bool `validate:"required,min=1,dive,keys,required,endkeys"`
}

func (c UploadActivation) Validate() error {
	if err := check(c); err != nil {
		return err
	}
	if _, clash := c.Uploads[fieldDataSources]; clash {
		return invalid("UploadActivation.Uploads", "upload id clashes with the data source field")
	}
	return nil
}

// Form encodes the command for EndpointAdmin.
func (c UploadActivation) Form() (url.Values, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	v := url.Values{}
	v.Set(fieldDataSources, c.DataSource)
	for id, active := range c.Uploads {
		state := UploadInactive
		if active {
			state = UploadActive
		}
		v.Set(id, state)
	}
	return v, nil
}
