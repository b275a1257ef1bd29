// Package wizard holds the view state and the form commands of the dashboard
// configuration wizard: schema search with an explicit selection, typed
// commands for the wizard endpoints, and the helpers the editor shares with
// the server.
package wizard

import (
	"slices"
	"strings"

	"github.com/reoring/dashschema"
)

// Selection tells how the current search result was chosen.
type Selection int

const (
	// SelectionNone means there is nothing to show.
	SelectionNone Selection = iota
	// SelectionTop means the first result was picked automatically.
	SelectionTop
	// SelectionExplicit means the user picked a result.
	SelectionExplicit
)

func (s Selection) String() string {
	switch s {
	case SelectionTop:
		return "top"
	case SelectionExplicit:
		return "explicit"
	default:
		return "none"
	}
}

// Result is one row of the search table.
type Result struct {
	Path        string `json:"path"`
	Display     string `json:"display"`
	Description string `json:"description"`
}

// SearchView is the search panel of the schema editor. It is not safe for
// concurrent use.
type SearchView struct {
	index     *dashschema.Index
	keywords  []string
	results   []Result
	selection Selection
	cursor    int
}

// NewSearchView returns an empty view over idx.
func NewSearchView(idx *dashschema.Index) *SearchView {
	return &SearchView{index: idx}
}

// Run splits query on white space and searches with the words as keywords.
// The top result, if any, becomes the selection. A failed run leaves the view
// empty.
func (v *SearchView) Run(query string) error {
	v.Clear()
	keywords := strings.Fields(query)
	if len(keywords) == 0 {
		return dashschema.Issue{Code: dashschema.CodeInvalidArgument, Message: "empty query"}
	}
	paths, err := v.index.Search(keywords)
	if err != nil {
		return err
	}
	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		r, err := v.result(p)
		if err != nil {
			return err
		}
		results = append(results, r)
	}
	v.keywords = keywords
	v.results = results
	if len(results) > 0 {
		v.selection = SelectionTop
	}
	return nil
}

func (v *SearchView) result(path string) (Result, error) {
	display, err := v.index.RenderPath(path)
	if err != nil {
		return Result{}, err
	}
	desc, err := v.index.Describe(path)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: path, Display: display, Description: desc}, nil
}

// Keywords returns the words of the last successful run.
func (v *SearchView) Keywords() []string { return slices.Clone(v.keywords) }

// Results returns the rows of the last run.
func (v *SearchView) Results() []Result { return slices.Clone(v.results) }

// Selection reports how the current row was chosen.
func (v *SearchView) Selection() Selection { return v.selection }

// Selected returns the current row.
func (v *SearchView) Selected() (Result, bool) {
	if v.selection == SelectionNone {
		return Result{}, false
	}
	return v.results[v.cursor], true
}

// Select makes row i the explicit selection.
func (v *SearchView) Select(i int) error {
	if i < 0 || i >= len(v.results) {
		return dashschema.Issue{
			Code:    dashschema.CodeInvalidArgument,
			Message: "selection out of range",
			Params:  map[string]any{"index": i, "results": len(v.results)},
		}
	}
	v.cursor = i
	v.selection = SelectionExplicit
	return nil
}

// Clear drops results and selection.
func (v *SearchView) Clear() {
	v.keywords = nil
	v.results = nil
	v.selection = SelectionNone
	v.cursor = 0
}
