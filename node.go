package dashschema

import "github.com/reoring/dashschema/internal/engine"

// Kind identifies the shape of a schema node.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "scalar"
	}
}

// Object is a decoded JSON object that keeps member order.
type Object = engine.Object

// Member is one key/value pair of an Object.
type Member = engine.Member

// Node is one node of an immutable schema tree.
//
// Object nodes carry Properties in declaration order, array nodes carry a
// single Items child (nil when the schema declares none). Every keyword other
// than properties, items, title and description lands in Attrs untouched.
type Node struct {
	Kind        Kind
	Title       string
	Description string
	Properties  []Property
	Items       *Node
	Attrs       map[string]any
}

// Property is a named child of an object node.
type Property struct {
	Name string
	Node *Node
}

// Property returns the child registered under name.
func (n *Node) Property(name string) (*Node, bool) {
	if n == nil || n.Kind != KindObject {
		return nil, false
	}
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// Attr returns a descriptive keyword. String titles and descriptions are
// served from their dedicated fields; non-string ones stay in Attrs.
func (n *Node) Attr(key string) (any, bool) {
	if n == nil {
		return nil, false
	}
	switch {
	case key == keyTitle && n.Title != "":
		return n.Title, true
	case key == keyDescription && n.Description != "":
		return n.Description, true
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// Type returns the declared "type" keyword when it is a plain string.
func (n *Node) Type() string {
	if n == nil {
		return ""
	}
	s, _ := n.Attrs[keyType].(string)
	return s
}

const (
	keyType        = "type"
	keyTitle       = "title"
	keyDescription = "description"
	keyProperties  = "properties"
	keyItems       = "items"
	keyRef         = "$ref"
	keyDefs        = "$defs"
	keyDefinitions = "definitions"
)
