package dashschema

import "strings"

// Structural segments of a dotted path.
const (
	PathSeparator = "."
	segProperties = "properties"
	segItems      = "items"
)

// SplitPath splits a dotted path into raw segments.
func SplitPath(path string) []string { return strings.Split(path, PathSeparator) }

// PropertyPath returns the dotted path of the property name under parent.
func PropertyPath(parent, name string) string {
	return parent + PathSeparator + segProperties + PathSeparator + name
}

// ItemsPath returns the dotted path of the items child of the array at parent.
func ItemsPath(parent string) string { return parent + PathSeparator + segItems }

// resolveFrom walks segs from root. It returns the node reached, the index of
// the segment that failed (-1 on success) and, for each segment, the node it
// resolved to (nil for structural "properties" segments).
func resolveFrom(root *Node, segs []string) (*Node, int, []*Node) {
	cur := root
	nodes := make([]*Node, len(segs))
	expectProp := false
	for i, s := range segs {
		switch {
		case expectProp:
			child, ok := cur.Property(s)
			if !ok {
				return nil, i, nodes
			}
			cur = child
			expectProp = false
		case s == segProperties && cur.Kind == KindObject:
			expectProp = true
			continue
		case s == segItems && cur.Kind == KindArray && cur.Items != nil:
			cur = cur.Items
		default:
			return nil, i, nodes
		}
		nodes[i] = cur
	}
	return cur, -1, nodes
}
