package server

import (
	"errors"
	"net/http"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/dashschema"
	"github.com/reoring/dashschema/catalog"
	"github.com/reoring/dashschema/i18n"
	"github.com/reoring/dashschema/internal/logger"
)

const (
	codeUnknownSchema = "unknown_schema"
	codeInternal      = "internal"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("writeJSON encode error", "error", err)
	}
}

// writeRaw writes an already encoded JSON document.
func writeRaw(w http.ResponseWriter, r *http.Request, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		logger.FromContext(r.Context()).Error("writeRaw error", "error", err)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Segment string `json:"segment,omitempty"`
}

// writeError maps err to a status code and writes a localized error body.
func writeError(w http.ResponseWriter, r *http.Request, err error, schema string) {
	status, code, segment := classify(err)
	data := map[string]string{"segment": segment}
	if code == codeUnknownSchema {
		data["schema"] = schema
	}
	tr := i18n.For(i18n.Match(r.Header.Get("Accept-Language")))
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, r, status, errorBody{Error: tr.Message(code, data), Code: code, Segment: segment})
}

func classify(err error) (int, string, string) {
	if errors.Is(err, catalog.ErrUnknownSchema) {
		return http.StatusNotFound, codeUnknownSchema, ""
	}
	iss, ok := dashschema.AsIssues(err)
	if !ok || len(iss) == 0 {
		return http.StatusInternalServerError, codeInternal, ""
	}
	it := iss[0]
	switch it.Code {
	case dashschema.CodeInvalidArgument, dashschema.CodeParseError, dashschema.CodeTooDeep, dashschema.CodeDuplicateKey:
		return http.StatusBadRequest, it.Code, it.Segment
	case dashschema.CodePathResolution, dashschema.CodeNodeNotFound:
		return http.StatusNotFound, it.Code, it.Segment
	case dashschema.CodeSchemaViolation:
		return http.StatusUnprocessableEntity, it.Code, ""
	}
	return http.StatusInternalServerError, codeInternal, ""
}
