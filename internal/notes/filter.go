package notes

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// NormalizeQuery trims and case-folds a search query. "" means no filter.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func haystack(n Note) string {
	return strings.ToLower(n.Title + " " + n.Content)
}

// FilterIndices returns the positions of the notes matching q, in collection
// order.
func FilterIndices(ns []Note, q string) []int {
	term := NormalizeQuery(q)
	out := make([]int, 0, len(ns))
	for i, n := range ns {
		if term == "" || strings.Contains(haystack(n), term) {
			out = append(out, i)
		}
	}
	return out
}

// Filter returns the notes whose title or content contains q, ignoring case.
// Order is preserved; display order is the caller's concern.
func Filter(ns []Note, q string) []Note {
	idx := FilterIndices(ns, q)
	out := make([]Note, len(idx))
	for i, j := range idx {
		out[i] = ns[j]
	}
	return out
}

// FuzzyFilter ranks notes by fuzzy match score, best first. Used by the CLI
// only; the editor's sidebar sticks to substring matching.
func FuzzyFilter(ns []Note, q string) []int {
	term := strings.TrimSpace(q)
	if term == "" {
		return FilterIndices(ns, "")
	}
	targets := make([]string, len(ns))
	for i, n := range ns {
		targets[i] = n.Title + " " + n.Content
	}
	matches := fuzzy.Find(term, targets)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Index)
	}
	return out
}
