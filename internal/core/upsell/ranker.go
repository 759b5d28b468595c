package upsell

import (
	"cmp"
	"slices"
)

// DefaultMaxResults caps the ranked output.
const DefaultMaxResults = 8

// Rank scores every candidate, drops zero scores and returns the best max
// ordered by score descending, then price ascending, then name.
func Rank(candidates []Product, profile Profile, clicks map[string]int, scorer Scorer, max int) []Recommendation {
	if max <= 0 {
		max = DefaultMaxResults
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, p := range candidates {
		score := scorer.Score(p, profile, clicks[p.SKU])
		if score <= 0 {
			continue
		}
		recs = append(recs, Recommendation{Product: p, Score: score})
	}

	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Price, b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	if len(recs) > max {
		recs = recs[:max]
	}
	return recs
}

// Aggregate flattens search batches, dropping empty and excluded SKUs and
// keeping the first occurrence of each SKU.
func Aggregate(batches [][]Product, excluded map[string]struct{}) []Product {
	seen := make(map[string]struct{})
	var out []Product
	for _, batch := range batches {
		for _, p := range batch {
			if p.SKU == "" {
				continue
			}
			if _, skip := excluded[p.SKU]; skip {
				continue
			}
			if _, dup := seen[p.SKU]; dup {
				continue
			}
			seen[p.SKU] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
