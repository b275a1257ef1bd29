package wizard

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/tidwall/gjson"

	"github.com/reoring/dashschema"
)

// MainDataSources returns the data source types a graphic reads from: the
// main source followed by every additional source, without duplicates. cfg
// is a graphic config, the editor's component form of one, or a bare
// data_sources object.
func MainDataSources(cfg []byte) ([]string, error) {
	if !gjson.ValidBytes(cfg) {
		return nil, dashschema.Issue{Code: dashschema.CodeParseError, Message: "graphic config is not valid JSON"}
	}
	ds := gjson.ParseBytes(cfg)
	for _, p := range []string{metaInfoKey + ".data_sources", "data_sources"} {
		if sub := ds.Get(p); sub.IsObject() {
			ds = sub
			break
		}
	}
	main := ds.Get("main_data_source.data_source_type")
	if main.Type != gjson.String || main.Str == "" {
		return nil, dashschema.Issue{
			Code:    dashschema.CodeInvalidArgument,
			Path:    "data_sources.main_data_source.data_source_type",
			Message: "missing main data source",
		}
	}
	out := []string{main.Str}
	seen := map[string]bool{main.Str: true}
	for _, r := range ds.Get("additional_data_sources.#.data_source_type").Array() {
		name := r.String()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

// SanitizeLabel turns a page label or graphic title into a lower case token
// usable as a url endpoint and a file name. Words are joined with "_".
func SanitizeLabel(label string) string {
	return strings.ReplaceAll(slug.Make(label), "-", "_")
}

// GraphicFilename picks the file name for a new graphic titled title:
// "<label>.json", or "<label>_<i>.json" with the smallest free i when exists
// reports the plain name as taken.
func GraphicFilename(title string, exists func(name string) bool) (string, error) {
	base := SanitizeLabel(title)
	if base == "" {
		return "", dashschema.Issue{
			Code:    dashschema.CodeInvalidArgument,
			Message: "title has no usable characters",
			Params:  map[string]any{"title": title},
		}
	}
	name := base + ".json"
	if !exists(name) {
		return name, nil
	}
	for i := 0; ; i++ {
		name = fmt.Sprintf("%s_%d.json", base, i)
		if !exists(name) {
			return name, nil
		}
	}
}
