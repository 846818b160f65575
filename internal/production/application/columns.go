package application

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	suggestionCutoff = 0.6
	maxSuggestions   = 3
)

// MissingColumns returns the required names absent from columns.
func MissingColumns(columns, required []string) []string {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := present[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// SuggestColumns proposes, for each missing name, up to three existing columns
// whose case-insensitive edit similarity is at least 0.6, best first.
func SuggestColumns(columns, missing []string) map[string][]string {
	out := make(map[string][]string, len(missing))
	for _, want := range missing {
		type candidate struct {
			name  string
			score float64
		}
		var candidates []candidate
		for _, col := range columns {
			if score := similarity(want, col); score >= suggestionCutoff {
				candidates = append(candidates, candidate{name: col, score: score})
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
		names := []string{}
		for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
			names = append(names, candidates[i].name)
		}
		out[want] = names
	}
	return out
}

func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
