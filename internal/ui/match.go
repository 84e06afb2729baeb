package ui

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/rupestre-campos/pi-world-radio/internal/translit"
)

// Match ranks candidates against query, ignoring case and accents: prefix
// matches first, then substring matches, then fuzzy matches by score. The
// first two groups keep candidate order. An empty query matches everything.
// A limit of zero or less returns every match.
func Match(candidates []string, query string, limit int) []string {
	q := normalize(query)
	if q == "" {
		return truncate(append([]string(nil), candidates...), limit)
	}

	normalized := make([]string, len(candidates))
	for i, c := range candidates {
		normalized[i] = normalize(c)
	}

	var prefix, contains []int
	var scattered fuzzy.Matches
	for _, m := range fuzzy.FindNoSort(q, normalized) {
		switch {
		case strings.HasPrefix(m.Str, q):
			prefix = append(prefix, m.Index)
		case strings.Contains(m.Str, q):
			contains = append(contains, m.Index)
		default:
			scattered = append(scattered, m)
		}
	}
	slices.SortStableFunc(scattered, func(a, b fuzzy.Match) int {
		return cmp.Compare(b.Score, a.Score)
	})

	result := make([]string, 0, len(prefix)+len(contains)+len(scattered))
	for _, i := range prefix {
		result = append(result, candidates[i])
	}
	for _, i := range contains {
		result = append(result, candidates[i])
	}
	for _, m := range scattered {
		result = append(result, candidates[m.Index])
	}
	if len(result) == 0 {
		return nil
	}
	return truncate(result, limit)
}

func normalize(s string) string {
	return strings.ToLower(translit.Fold(s))
}

func truncate(s []string, limit int) []string {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
