package dashschema

import (
	"slices"
	"strings"
)

// Search returns the dotted paths of every node for which all keywords were
// seen along its ancestor chain, in pre-order with siblings in declaration
// order.
//
// A keyword is seen when it is a case-insensitive substring of a node name or
// of its description. Name matches are inherited by descendants; description
// matches only count for the node that carries them. The items child of an
// array is named "items".
func (x *Index) Search(keywords []string) ([]string, error) {
	kws, err := normalizeKeywords(keywords)
	if err != nil {
		return nil, err
	}
	out := []string{}
	searchNode(x.root, x.name, x.name, kws, make([]bool, len(kws)), &out)
	return out, nil
}

func searchNode(n *Node, name, path string, kws []string, inherited []bool, out *[]string) {
	seen := slices.Clone(inherited)
	lname := strings.ToLower(name)
	ldesc := strings.ToLower(n.Description)
	all := true
	for i, k := range kws {
		if !seen[i] && strings.Contains(lname, k) {
			seen[i] = true
		}
		if !seen[i] && (ldesc == "" || !strings.Contains(ldesc, k)) {
			all = false
		}
	}
	if all {
		*out = append(*out, path)
	}
	switch n.Kind {
	case KindObject:
		for _, p := range n.Properties {
			searchNode(p.Node, p.Name, PropertyPath(path, p.Name), kws, seen, out)
		}
	case KindArray:
		if n.Items != nil {
			searchNode(n.Items, segItems, ItemsPath(path), kws, seen, out)
		}
	}
}

func normalizeKeywords(keywords []string) ([]string, error) {
	if len(keywords) == 0 {
		return nil, invalidArgument("no keywords")
	}
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			return nil, invalidArgument("empty keyword")
		}
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out, nil
}
