package dashschema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	eng "github.com/reoring/dashschema/internal/engine"
)

// DefaultMaxDepth bounds document nesting when LoadOptions.MaxDepth is zero.
const DefaultMaxDepth = 64

// LoadOptions bounds schema loading.
type LoadOptions struct {
	// MaxDepth limits object/array nesting of the raw document. Negative
	// disables the limit.
	MaxDepth int
}

func (o LoadOptions) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	}
	return o.MaxDepth
}

// Diag carries non-fatal warnings produced while building a tree.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

// DecodeValue reads one document from src into the ordered value model.
func DecodeValue(src Source, opt LoadOptions) (any, error) {
	v, err := eng.DecodeOrdered(src, eng.DecodeOptions{MaxDepth: opt.maxDepth()})
	if err != nil {
		return nil, decodeIssue(err)
	}
	return v, nil
}

func decodeIssue(err error) error {
	var dup *eng.DuplicateKeyError
	switch {
	case errors.Is(err, eng.ErrTooDeep):
		return Issue{Code: CodeTooDeep, Message: "document nesting too deep", Cause: err}
	case errors.As(err, &dup):
		return Issue{Code: CodeDuplicateKey, Message: fmt.Sprintf("duplicate key %q", dup.Key), Cause: err}
	}
	return Issue{Code: CodeParseError, Message: err.Error(), Cause: err}
}

// Decode reads a schema document from src and builds its tree.
func Decode(src Source, opt LoadOptions) (*Node, Diag, error) {
	v, err := DecodeValue(src, opt)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	return NodeFromValue(v)
}

// LoadJSON builds a schema tree from a JSON document.
func LoadJSON(data []byte) (*Node, Diag, error) {
	return Decode(JSONBytes(data), LoadOptions{})
}

// NodeFromValue builds a schema tree from a decoded document. Local $ref
// pointers into $defs or definitions are expanded; unknown and cyclic refs
// stay unexpanded and are reported through Diag.
func NodeFromValue(v any) (*Node, Diag, error) {
	d := &simpleDiag{}
	root, ok := v.(Object)
	if !ok {
		return nil, d, Issue{Code: CodeParseError, Message: fmt.Sprintf("schema root must be an object, got %T", v)}
	}
	b := &builder{d: d, defs: collectDefs(root), visiting: map[string]bool{}}
	return b.node(root, ""), d, nil
}

type builder struct {
	d        *simpleDiag
	defs     map[string]Object
	visiting map[string]bool
}

func collectDefs(root Object) map[string]Object {
	defs := map[string]Object{}
	for _, key := range []string{keyDefinitions, keyDefs} {
		raw, ok := root.Get(key)
		if !ok {
			continue
		}
		obj, ok := raw.(Object)
		if !ok {
			continue
		}
		for _, m := range obj {
			if o, ok := m.Value.(Object); ok {
				defs["#/"+key+"/"+m.Key] = o
			}
		}
	}
	return defs
}

func (b *builder) node(obj Object, at string) *Node {
	if ref, ok := obj.Get(keyRef); ok {
		if s, ok := ref.(string); ok {
			switch base, known := b.defs[s]; {
			case !known:
				b.d.warnf("%s: $ref %q not resolved (local $defs/definitions only)", display(at), s)
			case b.visiting[s]:
				b.d.warnf("%s: cyclic $ref %q left unexpanded", display(at), s)
			default:
				b.visiting[s] = true
				defer delete(b.visiting, s)
				obj = mergeRef(obj, base)
			}
		}
	}

	n := &Node{Attrs: map[string]any{}}
	var (
		props    Object
		hasProps bool
		items    any
		hasItems bool
	)
	for _, m := range obj {
		switch m.Key {
		case keyTitle, keyDescription:
			s, ok := m.Value.(string)
			if !ok {
				n.Attrs[m.Key] = m.Value
				continue
			}
			if m.Key == keyTitle {
				n.Title = s
			} else {
				n.Description = s
			}
		case keyProperties:
			o, ok := m.Value.(Object)
			if !ok {
				b.d.warnf("%s: properties is not an object", display(at))
				continue
			}
			props, hasProps = o, true
		case keyItems:
			items, hasItems = m.Value, true
		case keyDefs, keyDefinitions:
			// consumed by collectDefs
		default:
			n.Attrs[m.Key] = m.Value
		}
	}

	switch {
	case hasProps || declaresType(n.Attrs[keyType], "object"):
		n.Kind = KindObject
		for _, m := range props {
			n.Properties = append(n.Properties, Property{Name: m.Key, Node: b.child(m.Value, PropertyPath(at, m.Key))})
		}
	case hasItems || declaresType(n.Attrs[keyType], "array"):
		n.Kind = KindArray
		if hasItems {
			n.Items = b.items(items, ItemsPath(at))
		}
	default:
		n.Kind = KindScalar
	}
	return n
}

func (b *builder) child(v any, at string) *Node {
	if o, ok := v.(Object); ok {
		return b.node(o, at)
	}
	b.d.warnf("%s: non-object schema (%s) treated as an empty scalar", display(at), FormatValue(v))
	return &Node{Kind: KindScalar, Attrs: map[string]any{}}
}

func (b *builder) items(v any, at string) *Node {
	switch t := v.(type) {
	case Object:
		return b.node(t, at)
	case []any:
		b.d.warnf("%s: tuple items reduced to the first schema", display(at))
		if len(t) == 0 {
			return nil
		}
		return b.child(t[0], at)
	}
	b.d.warnf("%s: items is not a schema", display(at))
	return nil
}

// mergeRef overlays base under obj; keys present in obj win and $ref is
// dropped.
func mergeRef(obj, base Object) Object {
	out := make(Object, 0, len(obj)+len(base))
	for _, m := range obj {
		if m.Key != keyRef {
			out = append(out, m)
		}
	}
	for _, m := range base {
		if _, exists := obj.Get(m.Key); !exists {
			out = append(out, m)
		}
	}
	return out
}

func declaresType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case []any:
		return slices.ContainsFunc(t, func(e any) bool { s, _ := e.(string); return s == want })
	}
	return false
}

func display(at string) string {
	if at == "" {
		return "<root>"
	}
	return strings.TrimPrefix(at, PathSeparator)
}
