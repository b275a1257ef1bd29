package dashschema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LineBreak separates the lines produced by Describe.
const LineBreak = "<br>"

// describeKeys is the fixed set and order of keywords Describe reports.
var describeKeys = []string{
	"title", "type", "pattern", "enum", "minLength", "maxLength",
	"minimum", "maximum", "minItems", "maxItems", "required", "default",
	"description", "examples",
}

// RenderPath replaces every resolvable segment of path with the title of the
// node it names, when that node has one. "properties" segments are kept as
// they are. The first segment must be the root label. The output is for
// display only and cannot be fed back.
func (x *Index) RenderPath(path string) (string, error) {
	segs := SplitPath(path)
	if segs[0] != x.name {
		return "", Issue{Code: CodePathResolution, Path: path, Segment: segs[0], Message: "unknown root"}
	}
	_, failed, nodes := resolveFrom(x.root, segs[1:])
	if failed >= 0 {
		return "", Issue{Code: CodePathResolution, Path: path, Segment: segs[failed+1]}
	}
	out := make([]string, len(segs))
	out[0] = titleOr(x.root, segs[0])
	for i, n := range nodes {
		out[i+1] = titleOr(n, segs[i+1])
	}
	return strings.Join(out, PathSeparator), nil
}

// Describe renders the descriptive keywords of the node at path as
// "<key>: <value>" lines joined by LineBreak. The first path segment stands
// for the root and is not checked.
func (x *Index) Describe(path string) (string, error) {
	if path == "" {
		return "", invalidArgument("empty path")
	}
	segs := SplitPath(path)
	n, failed, _ := resolveFrom(x.root, segs[1:])
	if failed >= 0 {
		return "", Issue{Code: CodeNodeNotFound, Path: path, Segment: segs[failed+1]}
	}
	lines := make([]string, 0, len(describeKeys))
	for _, k := range describeKeys {
		v, ok := n.Attr(k)
		if !ok {
			continue
		}
		lines = append(lines, k+": "+FormatValue(v))
	}
	return strings.Join(lines, LineBreak), nil
}

func titleOr(n *Node, seg string) string {
	if n != nil && n.Title != "" {
		return n.Title
	}
	return seg
}

// FormatValue renders a keyword value for display. Arrays are comma-joined,
// objects become compact JSON.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = FormatValue(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	case Object:
		b, err := MarshalValue(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
