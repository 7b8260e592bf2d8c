// Package ranking orders candidates by semantic similarity to a query
// vector. Results are deterministic: strictly descending score with ties
// broken by original corpus order.
package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/recruitkit/talent-scout/internal/talent"
)

// RankedCandidate is one ranking result. Rank is 1-based.
type RankedCandidate struct {
	Candidate talent.Candidate
	Score     float64
	Rank      int
}

// Rank scores every candidate against the query vector under the named
// strategy and returns the top k. An empty candidate list yields an empty
// result without error. A dimensionality mismatch between the query and any
// candidate is a configuration fault and fails the whole call; records are
// never silently skipped.
func Rank(query []float32, candidates []talent.Candidate, k int, strategy string, weights map[string]float64) ([]RankedCandidate, error) {
	combine, err := resolveStrategy(strategy)
	if err != nil {
		return nil, err
	}

	if k < 1 {
		return nil, fmt.Errorf("top-k must be at least 1, got %d", k)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	type scored struct {
		index int
		score float64
	}

	results := make([]scored, 0, len(candidates))
	for i := range candidates {
		base, err := CosineSimilarity(query, candidates[i].Embedding)
		if err != nil {
			return nil, fmt.Errorf("candidate %q: %w", candidates[i].Name, err)
		}
		results = append(results, scored{
			index: i,
			score: combine(base, &candidates[i], weights),
		})
	}

	// SliceStable keeps corpus order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > k {
		results = results[:k]
	}

	ranked := make([]RankedCandidate, len(results))
	for i, r := range results {
		ranked[i] = RankedCandidate{
			Candidate: candidates[r.index],
			Score:     r.score,
			Rank:      i + 1,
		}
	}

	return ranked, nil
}

// CosineSimilarity returns the normalized dot product of two vectors in
// [-1, 1]. Vectors of different sizes do not compare.
func CosineSimilarity(v1, v2 []float32) (float64, error) {
	if len(v1) != len(v2) {
		return 0, fmt.Errorf("vector sizes do not match: %d vs %d", len(v1), len(v2))
	}

	var dot, norm1, norm2 float64
	for i := range v1 {
		a := float64(v1[i])
		b := float64(v2[i])
		dot += a * b
		norm1 += a * a
		norm2 += b * b
	}

	// A zero vector has no direction; similarity is defined as 0.
	if norm1 == 0 || norm2 == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(norm1) * math.Sqrt(norm2)), nil
}
