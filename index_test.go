package dashschema_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/dashschema"
)

const alphaSchema = `{
	"title": "Alpha",
	"type": "object",
	"properties": {
		"b": {"title": "Beta", "type": "string", "description": "contains foo"}
	}
}`

const selectorSchema = `{
	"type": "object",
	"title": "Selector List",
	"description": "dictionary of data selectors for a graphic",
	"required": ["filter"],
	"properties": {
		"filter": {
			"type": "array",
			"title": "Filter",
			"description": "a filter operation based on label",
			"items": {
				"type": "object",
				"required": ["column"],
				"properties": {
					"column": {"type": "string", "description": "name in table", "enum": ["penguin_size:sex", "penguin_size:island"]},
					"multiple": {"type": "boolean"},
					"default_selected": {
						"type": "array",
						"description": "default filter, list of column values",
						"minItems": 1,
						"items": {"type": "string"}
					}
				}
			}
		},
		"axis": {
			"type": "array",
			"title": "Axis Selector",
			"items": {
				"type": "object",
				"properties": {
					"column": {"type": "string", "description": "axis name", "pattern": "^[a-zA-Z]$"}
				}
			}
		}
	}
}`

func mustIndex(t *testing.T, name, doc string) *dashschema.Index {
	t.Helper()
	root, _, err := dashschema.LoadJSON([]byte(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	idx, err := dashschema.NewIndex(name, root)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	return idx
}

func TestIndex_AlphaScenario(t *testing.T) {
	idx := mustIndex(t, "a", alphaSchema)

	paths, err := idx.Search([]string{"foo"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !reflect.DeepEqual(paths, []string{"a.properties.b"}) {
		t.Fatalf("unexpected paths: %#v", paths)
	}

	label, err := idx.RenderPath("a.properties.b")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if label != "Alpha.properties.Beta" {
		t.Fatalf("unexpected label: %q", label)
	}

	info, err := idx.Describe("a.properties.b")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if want := "title: Beta<br>type: string<br>description: contains foo"; info != want {
		t.Fatalf("unexpected description:\n got %q\nwant %q", info, want)
	}
}

func TestSearch_NoMatchIsEmpty(t *testing.T) {
	idx := mustIndex(t, "a", alphaSchema)
	paths, err := idx.Search([]string{"zzz"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if paths == nil || len(paths) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", paths)
	}
}

func TestSearch_EmptyKeywordsFailFast(t *testing.T) {
	idx := mustIndex(t, "a", alphaSchema)
	for _, kws := range [][]string{nil, {}, {"  "}} {
		_, err := idx.Search(kws)
		if !errors.Is(err, dashschema.ErrInvalidArgument) {
			t.Fatalf("keywords %#v: expected invalid argument, got %v", kws, err)
		}
	}
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	idx := mustIndex(t, "a", alphaSchema)
	paths, err := idx.Search([]string{"FO"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(paths) != 1 || paths[0] != "a.properties.b" {
		t.Fatalf("unexpected paths: %#v", paths)
	}
}

func TestSearch_NameMatchesAreInherited(t *testing.T) {
	idx := mustIndex(t, "s", selectorSchema)
	// "filter" matches the property name and stays seen for the subtree;
	// "table" only appears in the column description.
	paths, err := idx.Search([]string{"filter", "table"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []string{"s.properties.filter.items.properties.column"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("unexpected paths:\n got %#v\nwant %#v", paths, want)
	}
}

func TestSearch_DescriptionMatchesAreNotInherited(t *testing.T) {
	idx := mustIndex(t, "s", selectorSchema)
	paths, err := idx.Search([]string{"label"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// only the filter node carries "label" in its description
	if !reflect.DeepEqual(paths, []string{"s.properties.filter"}) {
		t.Fatalf("unexpected paths: %#v", paths)
	}
}

func TestSearch_PreOrderAndDeclarationOrder(t *testing.T) {
	idx := mustIndex(t, "s", selectorSchema)
	paths, err := idx.Search([]string{"column"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []string{
		"s.properties.filter.items.properties.column",
		"s.properties.filter.items.properties.default_selected",
		"s.properties.axis.items.properties.column",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("unexpected paths:\n got %#v\nwant %#v", paths, want)
	}
}

func TestSearch_ResultsSatisfyAllKeywords(t *testing.T) {
	idx := mustIndex(t, "s", selectorSchema)
	kws := []string{"items", "default"}
	paths, err := idx.Search(kws)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("expected matches")
	}
	for _, p := range paths {
		// every keyword is a substring of the path or of the node description
		n, err := idx.Lookup(p)
		if err != nil {
			t.Fatalf("lookup %s: %v", p, err)
		}
		hay := strings.ToLower(p + " " + n.Description)
		for _, k := range kws {
			if !strings.Contains(hay, k) {
				t.Fatalf("path %s does not satisfy %q", p, k)
			}
		}
	}
}

func TestRenderPath_TitlesAndItems(t *testing.T) {
	idx := mustIndex(t, "s", selectorSchema)
	got, err := idx.RenderPath("s.properties.filter.items.properties.column")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "Selector List.properties.Filter.items.properties.column"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderPath_UnresolvedSegment(t *testing.T) {
	idx := mustIndex(t, "a", alphaSchema)
	for _, p := range []string{"a.properties.missing", "x.properties.b", "a.b", "a.items"} {
		_, err := idx.RenderPath(p)
		if !errors.Is(err, dashschema.ErrPathResolution) {
			t.Fatalf("%s: expected path resolution error, got %v", p, err)
		}
	}
	_, err := idx.RenderPath("a.properties.missing")
	var it dashschema.Issue
	if !errors.As(err, &it) || it.Segment != "missing" {
		t.Fatalf("expected failing segment 'missing', got %#v", err)
	}
}

func TestDescribe_AllowListOrder(t *testing.T) {
	idx := mustIndex(t, "s", selectorSchema)

	got, err := idx.Describe("s.properties.filter.items.properties.default_selected")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if want := "type: array<br>minItems: 1<br>description: default filter, list of column values"; got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	got, err = idx.Describe("s.properties.filter.items.properties.column")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if want := "type: string<br>enum: penguin_size:sex,penguin_size:island<br>description: name in table"; got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	// the root segment is not checked; "required" is reported, "properties" never is
	got, err = idx.Describe("whatever")
	if err != nil {
		t.Fatalf("describe root: %v", err)
	}
	if want := "title: Selector List<br>type: object<br>required: filter<br>description: dictionary of data selectors for a graphic"; got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestDescribe_NonStringTitleAndDescription(t *testing.T) {
	idx := mustIndex(t, "n", `{"type":"object","properties":{"v":{"title":["V","W"],"type":"number","description":{"en":"value"}}}}`)

	got, err := idx.Describe("n.properties.v")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if want := `title: V,W<br>type: number<br>description: {"en":"value"}`; got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	// only string titles replace keys when rendering
	if got, err := idx.RenderPath("n.properties.v"); err != nil || got != "n.properties.v" {
		t.Fatalf("render = %q, %v", got, err)
	}
}

func TestDescribe_NodeNotFound(t *testing.T) {
	idx := mustIndex(t, "a", alphaSchema)
	_, err := idx.Describe("a.properties.nope")
	if !errors.Is(err, dashschema.ErrNodeNotFound) {
		t.Fatalf("expected node not found, got %v", err)
	}
}

func TestNewIndex_RejectsBadInput(t *testing.T) {
	root := &dashschema.Node{Kind: dashschema.KindScalar}
	if _, err := dashschema.NewIndex("", root); !errors.Is(err, dashschema.ErrInvalidArgument) {
		t.Fatalf("empty name: %v", err)
	}
	if _, err := dashschema.NewIndex("a.b", root); !errors.Is(err, dashschema.ErrInvalidArgument) {
		t.Fatalf("dotted name: %v", err)
	}
	if _, err := dashschema.NewIndex("a", nil); !errors.Is(err, dashschema.ErrInvalidArgument) {
		t.Fatalf("nil root: %v", err)
	}
}

func TestPackageLevelHelpers(t *testing.T) {
	root := &dashschema.Node{
		Kind:  dashschema.KindObject,
		Title: "Alpha",
		Properties: []dashschema.Property{{
			Name: "b",
			Node: &dashschema.Node{Kind: dashschema.KindScalar, Title: "Beta", Description: "contains foo", Attrs: map[string]any{"type": "string"}},
		}},
	}
	paths, err := dashschema.Search([]string{"foo"}, root, "a")
	if err != nil || len(paths) != 1 {
		t.Fatalf("search: %v %#v", err, paths)
	}
	label, err := dashschema.RenderPath(paths[0], root, "a")
	if err != nil || label != "Alpha.properties.Beta" {
		t.Fatalf("render: %v %q", err, label)
	}
	info, err := dashschema.Describe(paths[0], root, "a")
	if err != nil || info != "title: Beta<br>type: string<br>description: contains foo" {
		t.Fatalf("describe: %v %q", err, info)
	}
}
