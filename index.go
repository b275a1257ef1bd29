package dashschema

import "strings"

// Index is a read-only view over one named schema tree. It holds no mutable
// state and is safe for concurrent use.
type Index struct {
	name string
	root *Node
}

// NewIndex wraps root under name. The name becomes the first segment of every
// dotted path the index produces.
func NewIndex(name string, root *Node) (*Index, error) {
	if name == "" {
		return nil, invalidArgument("empty root name")
	}
	if strings.Contains(name, PathSeparator) {
		return nil, invalidArgument("root name must not contain a path separator", "name", name)
	}
	if root == nil {
		return nil, invalidArgument("nil root node", "name", name)
	}
	return &Index{name: name, root: root}, nil
}

// Name returns the root label.
func (x *Index) Name() string { return x.name }

// Root returns the root node.
func (x *Index) Root() *Node { return x.root }

// Lookup resolves a dotted path whose first segment is the root label.
func (x *Index) Lookup(path string) (*Node, error) {
	segs := SplitPath(path)
	if segs[0] != x.name {
		return nil, Issue{Code: CodeNodeNotFound, Path: path, Segment: segs[0], Message: "unknown root"}
	}
	n, failed, _ := resolveFrom(x.root, segs[1:])
	if failed >= 0 {
		return nil, Issue{Code: CodeNodeNotFound, Path: path, Segment: segs[failed+1]}
	}
	return n, nil
}

// Search runs Index.Search over a transient index rooted at root.
func Search(keywords []string, root *Node, rootName string) ([]string, error) {
	x, err := NewIndex(rootName, root)
	if err != nil {
		return nil, err
	}
	return x.Search(keywords)
}

// RenderPath runs Index.RenderPath over a transient index rooted at root.
func RenderPath(path string, root *Node, rootName string) (string, error) {
	x, err := NewIndex(rootName, root)
	if err != nil {
		return "", err
	}
	return x.RenderPath(path)
}

// Describe runs Index.Describe over a transient index rooted at root.
func Describe(path string, root *Node, rootName string) (string, error) {
	x, err := NewIndex(rootName, root)
	if err != nil {
		return "", err
	}
	return x.Describe(path)
}
