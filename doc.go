// Package dashschema indexes the JSON schemas that drive the dashboard
// configuration editor.
//
// A schema document is loaded once into an immutable tree of Nodes (object,
// array or scalar) and wrapped in an Index under a root label. The index
// answers three read-only questions:
//
//   - Search: which nodes match a set of keywords (by name or description)?
//   - RenderPath: how should a dotted path be shown, with titles in place of keys?
//   - Describe: which descriptive keywords does the node at a path carry?
//
// Dotted paths mirror the schema layout, for example
// "graphic_schema.properties.data_sources.properties.main_data_source".
//
// Typical usage:
//
//	root, diag, err := dashschema.LoadJSON(data)
//	idx, err := dashschema.NewIndex("graphic_schema", root)
//	paths, err := idx.Search([]string{"join"})
//	label, err := idx.RenderPath(paths[0])
//	info, err := idx.Describe(paths[0])
//
// Failures are reported as Issue values; use errors.Is with ErrInvalidArgument,
// ErrPathResolution or ErrNodeNotFound to branch on them.
package dashschema
