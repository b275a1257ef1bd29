// Package catalog holds the schemas that drive the graphic configuration
// editor: the graphic, visualization and selector schemas plus one plotly
// schema per graph family.
//
// The schemas ship embedded. Enumerations of data source and column names
// depend on the deployment and are marked in the files with the
// "x-enum-source" keyword; Build fills them in.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"

	"github.com/reoring/dashschema"
)

//go:embed schemas
var embedded embed.FS

// Schema names of the embedded catalog.
const (
	GraphicSchema       = "graphic_schema"
	VisualizationSchema = "visualization_schema"
	SelectorSchema      = "selector_schema"
	PlotlySchema        = "plotly_schema"

	plotlyDir    = "plotly"
	plotlyPrefix = "plotly_"
)

// Enum sources understood in the x-enum-source keyword.
const (
	EnumSourceKeyword     = "x-enum-source"
	EnumSourceDataSources = "data_sources"
	EnumSourceColumns     = "columns"
)

// ErrUnknownSchema is returned for names the catalog does not hold.
var ErrUnknownSchema = errors.New("catalog: unknown schema")

// Options carries the deployment specific enumerations.
type Options struct {
	// DataSources lists the data source (table) names.
	DataSources []string
	// Columns lists qualified column names in "table:column" form.
	Columns []string
	// MaxDepth bounds schema nesting; zero uses the dashschema default.
	MaxDepth int
}

// Catalog is an immutable set of named schema indexes.
type Catalog struct {
	names    []string
	entries  map[string]*entry
	warnings []string
}

type entry struct {
	index *dashschema.Index
	value any
	raw   []byte

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) { return Build(Options{}) })

// Default returns the embedded catalog with empty enumerations.
func Default() (*Catalog, error) { return defaultCatalog() }

// Build loads the embedded schemas and fills their enumerations from opts.
func Build(opts Options) (*Catalog, error) {
	sub, err := fs.Sub(embedded, "schemas")
	if err != nil {
		return nil, err
	}
	return Load(sub, opts)
}

// Load reads every .json, .yaml and .yml file of fsys. Top-level files are
// named after their base name; files under plotly/ get the "plotly_" prefix.
func Load(fsys fs.FS, opts Options) (*Catalog, error) {
	c := &Catalog{entries: map[string]*entry{}}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name, ok := schemaName(p)
		if !ok {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		return c.add(name, p, data, opts)
	})
	if err != nil {
		return nil, err
	}
	if len(c.names) == 0 {
		return nil, fmt.Errorf("catalog: no schema files found")
	}
	return c, nil
}

func schemaName(p string) (string, bool) {
	ext := path.Ext(p)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return "", false
	}
	dir, file := path.Split(p)
	base := strings.TrimSuffix(file, ext)
	switch strings.TrimSuffix(dir, "/") {
	case "":
		return base, true
	case plotlyDir:
		return plotlyPrefix + base, true
	}
	return "", false
}

func (c *Catalog) add(name, file string, data []byte, opts Options) error {
	if _, dup := c.entries[name]; dup {
		return fmt.Errorf("catalog: schema %q defined twice (%s)", name, file)
	}
	lo := dashschema.LoadOptions{MaxDepth: opts.MaxDepth}
	var (
		v   any
		err error
	)
	if path.Ext(file) == ".json" {
		v, err = dashschema.DecodeValue(dashschema.JSONBytes(data), lo)
	} else {
		v, err = dashschema.DecodeYAMLValue(data, lo)
	}
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", file, err)
	}
	v = fillEnums(v, opts)
	root, diag, err := dashschema.NodeFromValue(v)
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", file, err)
	}
	for _, w := range diag.Warnings() {
		c.warnings = append(c.warnings, name+": "+w)
	}
	idx, err := dashschema.NewIndex(name, root)
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", file, err)
	}
	raw, err := dashschema.MarshalValue(v)
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", file, err)
	}
	c.names = append(c.names, name)
	c.entries[name] = &entry{index: idx, value: v, raw: raw}
	return nil
}

// fillEnums replaces the enum of every object marked with x-enum-source.
func fillEnums(v any, opts Options) any {
	switch t := v.(type) {
	case dashschema.Object:
		var src string
		if s, ok := t.Get(EnumSourceKeyword); ok {
			src, _ = s.(string)
		}
		out := make(dashschema.Object, 0, len(t))
		for _, m := range t {
			if m.Key == "enum" && src != "" {
				values, known := enumValues(src, opts)
				if known {
					// an empty enum would reject every value
					if len(values) > 0 {
						out = append(out, dashschema.Member{Key: m.Key, Value: stringsToAny(values)})
					}
					continue
				}
			}
			out = append(out, dashschema.Member{Key: m.Key, Value: fillEnums(m.Value, opts)})
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fillEnums(e, opts)
		}
		return out
	}
	return v
}

func enumValues(src string, opts Options) ([]string, bool) {
	switch src {
	case EnumSourceDataSources:
		return opts.DataSources, true
	case EnumSourceColumns:
		return opts.Columns, true
	}
	return nil, false
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Names lists the schema names in load order.
func (c *Catalog) Names() []string { return slices.Clone(c.names) }

// Warnings returns the non-fatal notes collected while building the trees.
func (c *Catalog) Warnings() []string { return slices.Clone(c.warnings) }

// Index returns the index of the named schema.
func (c *Catalog) Index(name string) (*dashschema.Index, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return e.index, nil
}

// Raw returns the schema document as JSON, enumerations filled in.
func (c *Catalog) Raw(name string) ([]byte, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return slices.Clone(e.raw), nil
}

// PlotSchemas lists the plotly schema names, e.g. "plotly_scatter".
func (c *Catalog) PlotSchemas() []string {
	var out []string
	for _, n := range c.names {
		if strings.HasPrefix(n, plotlyPrefix) {
			out = append(out, n)
		}
	}
	return out
}

// GraphTypes maps every plotly trace type to the schema that edits it. The
// types are read from the enum of data.items.type in each plot schema.
func (c *Catalog) GraphTypes() map[string]string {
	out := map[string]string{}
	for _, name := range c.PlotSchemas() {
		n, err := c.entries[name].index.Lookup(name + ".properties.data.items.properties.type")
		if err != nil {
			continue
		}
		enum, _ := n.Attrs["enum"].([]any)
		for _, e := range enum {
			if s, ok := e.(string); ok {
				out[s] = name
			}
		}
	}
	return out
}

// SchemaForGraphType returns the plot schema that edits traces of type t.
func (c *Catalog) SchemaForGraphType(t string) (string, bool) {
	name, ok := c.GraphTypes()[t]
	return name, ok
}

// Document assembles the schemas the graphic editor consumes as one JSON
// object: graphic, plotly (keyed by graph family), visualization and
// selector schemas.
func (c *Catalog) Document() ([]byte, error) {
	doc := dashschema.Object{}
	plots := dashschema.Object{}
	for _, name := range c.names {
		v := c.entries[name].value
		if strings.HasPrefix(name, plotlyPrefix) {
			plots = append(plots, dashschema.Member{Key: strings.TrimPrefix(name, plotlyPrefix), Value: v})
			continue
		}
		doc = append(doc, dashschema.Member{Key: name, Value: v})
	}
	if len(plots) > 0 {
		doc = append(doc, dashschema.Member{Key: PlotlySchema, Value: plots})
	}
	return dashschema.MarshalValue(doc)
}
