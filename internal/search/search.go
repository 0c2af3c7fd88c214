// Package search resolves bar names typed on the command line.
package search

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bars/internal/model"
)

// Result represents a fuzzy match against a bar title.
type Result struct {
	Bar            model.Bar
	Position       int // 1-based position in the bar list
	MatchedIndexes []int
	Score          int
}

// barTitles implements fuzzy.Source for a bar slice.
type barTitles []model.Bar

func (bt barTitles) String(i int) string {
	return bt[i].Title
}

func (bt barTitles) Len() int {
	return len(bt)
}

// FindBars matches query against bar titles.
// Returns results sorted by match score (best first).
func FindBars(bars []model.Bar, query string) []Result {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, barTitles(bars))

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Bar:            bars[m.Index],
			Position:       m.Index + 1,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// ResolveBar picks the bar a user meant by name. A case-insensitive exact
// title wins over the best fuzzy match. When nothing matches, the error names
// the closest title if it is within a few edits.
func ResolveBar(bars []model.Bar, name string) (model.Bar, error) {
	for _, b := range bars {
		if strings.EqualFold(b.Title, name) {
			return b, nil
		}
	}

	results := FindBars(bars, name)
	if len(results) > 0 {
		return results[0].Bar, nil
	}

	if closest, ok := Suggest(bars, name); ok {
		return model.Bar{}, fmt.Errorf("bar %q: %w (did you mean %q?)", name, model.ErrNotFound, closest.Title)
	}
	return model.Bar{}, fmt.Errorf("bar %q: %w", name, model.ErrNotFound)
}

// Suggest returns the bar whose title is closest to name by edit distance,
// ignoring case. A title counts when it is at most two edits or a third of
// its length away, whichever is more.
func Suggest(bars []model.Bar, name string) (model.Bar, bool) {
	var best model.Bar
	bestDist := -1
	for _, b := range bars {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(b.Title))
		if d > max(len(b.Title)/3, 2) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = b, d
		}
	}
	return best, bestDist >= 0
}
