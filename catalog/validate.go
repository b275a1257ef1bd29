package catalog

import (
	"cmp"
	"fmt"
	"slices"

	gojson "github.com/goccy/go-json"
	"github.com/kaptinlin/jsonschema"

	"github.com/reoring/dashschema"
)

// Validate checks a configuration document against the named schema. A
// document that violates the schema yields dashschema.Issues (one per failing
// keyword, Path is a JSON Pointer into doc).
func (c *Catalog) Validate(name string, doc []byte) error {
	e, ok := c.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	compiled, err := e.compile()
	if err != nil {
		return fmt.Errorf("catalog: compile %s: %w", name, err)
	}
	var v any
	if err := gojson.Unmarshal(doc, &v); err != nil {
		return dashschema.Issue{Code: dashschema.CodeParseError, Message: err.Error(), Cause: err}
	}
	result := compiled.Validate(v)
	if result.Valid {
		return nil
	}
	return collectIssues(result)
}

// ValidateValue is Validate for an already decoded document.
func (c *Catalog) ValidateValue(name string, v any) error {
	b, err := gojson.Marshal(dashschema.PlainValue(v))
	if err != nil {
		return err
	}
	return c.Validate(name, b)
}

func (e *entry) compile() (*jsonschema.Schema, error) {
	e.compileOnce.Do(func() {
		// the draft URI in $schema would make the compiler fetch a metaschema
		obj, _ := e.value.(dashschema.Object)
		stripped := slices.DeleteFunc(slices.Clone(obj), func(m dashschema.Member) bool { return m.Key == "$schema" })
		b, err := dashschema.MarshalValue(stripped)
		if err != nil {
			e.compileErr = err
			return
		}
		e.compiled, e.compileErr = jsonschema.NewCompiler().Compile(b)
	})
	return e.compiled, e.compileErr
}

func collectIssues(result *jsonschema.EvaluationResult) dashschema.Issues {
	var iss dashschema.Issues
	var walk func(r *jsonschema.EvaluationResult)
	walk = func(r *jsonschema.EvaluationResult) {
		if r == nil {
			return
		}
		for kw, e := range r.Errors {
			iss = dashschema.AppendIssues(iss, dashschema.Issue{
				Path:    pointer(r.InstanceLocation),
				Code:    dashschema.CodeSchemaViolation,
				Message: e.Error(),
				Params:  map[string]any{"keyword": kw},
			})
		}
		for _, d := range r.Details {
			walk(d)
		}
	}
	walk(result)
	if len(iss) == 0 {
		iss = dashschema.Issues{{Path: "/", Code: dashschema.CodeSchemaViolation, Message: "document does not match schema"}}
	}
	slices.SortStableFunc(iss, func(a, b dashschema.Issue) int {
		if c := cmp.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return cmp.Compare(fmt.Sprint(a.Params["keyword"]), fmt.Sprint(b.Params["keyword"]))
	})
	return iss
}

func pointer(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}
