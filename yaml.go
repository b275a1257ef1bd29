package dashschema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadYAML builds a schema tree from a YAML document. JSON input is accepted
// as well since it is valid YAML.
func LoadYAML(data []byte) (*Node, Diag, error) {
	v, err := DecodeYAMLValue(data, LoadOptions{})
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	return NodeFromValue(v)
}

// DecodeYAMLValue decodes the first YAML document of data into the ordered
// value model. Mapping order is preserved from the yaml.v3 node tree.
func DecodeYAMLValue(data []byte, opt LoadOptions) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, Issue{Code: CodeParseError, Message: err.Error(), Cause: err}
	}
	if doc.Kind == 0 {
		return nil, Issue{Code: CodeParseError, Message: "empty YAML document"}
	}
	c := yamlConv{max: opt.maxDepth()}
	return c.value(&doc, 0)
}

type yamlConv struct{ max int }

func (c yamlConv) value(n *yaml.Node, depth int) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.value(n.Content[0], depth)
	case yaml.AliasNode:
		return c.value(n.Alias, depth)
	case yaml.MappingNode:
		if err := c.enter(depth, n); err != nil {
			return nil, err
		}
		obj := make(Object, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if _, dup := obj.Get(key); dup {
				return nil, Issue{Code: CodeDuplicateKey, Message: fmt.Sprintf("duplicate key %q (line %d)", key, n.Content[i].Line)}
			}
			v, err := c.value(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			obj = append(obj, Member{Key: key, Value: v})
		}
		return obj, nil
	case yaml.SequenceNode:
		if err := c.enter(depth, n); err != nil {
			return nil, err
		}
		arr := make([]any, 0, len(n.Content))
		for _, e := range n.Content {
			v, err := c.value(e, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	}
	return yamlScalar(n), nil
}

func (c yamlConv) enter(depth int, n *yaml.Node) error {
	if c.max > 0 && depth+1 > c.max {
		return Issue{Code: CodeTooDeep, Message: fmt.Sprintf("document nesting too deep (line %d)", n.Line)}
	}
	return nil
}

func yamlScalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		if b, err := strconv.ParseBool(n.Value); err == nil {
			return b
		}
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return json.Number(strconv.FormatInt(i, 10))
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
		}
	}
	return n.Value
}
