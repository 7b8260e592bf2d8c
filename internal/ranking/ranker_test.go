package ranking

import (
	"errors"
	"math"
	"testing"

	"github.com/recruitkit/talent-scout/internal/talent"
)

func testCandidates() []talent.Candidate {
	return []talent.Candidate{
		{Name: "Alice", Skills: "video editing", Location: "Manila, Philippines", Embedding: []float32{1, 0}},
		{Name: "Bob", Skills: "ops", Location: "Singapore", Embedding: []float32{0, 1}},
	}
}

func TestRankBasicTopOne(t *testing.T) {
	t.Parallel()

	ranked, err := Rank([]float32{1, 0}, testCandidates(), 1, StrategyBasic, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ranked) != 1 {
		t.Fatalf("expected 1 result, got %d", len(ranked))
	}
	if ranked[0].Candidate.Name != "Alice" {
		t.Fatalf("expected Alice on top, got %s", ranked[0].Candidate.Name)
	}
	if math.Abs(ranked[0].Score-1.0) > 1e-9 {
		t.Fatalf("expected score 1.0, got %v", ranked[0].Score)
	}
	if ranked[0].Rank != 1 {
		t.Fatalf("expected rank 1, got %d", ranked[0].Rank)
	}
}

func TestRankLengthAndOrder(t *testing.T) {
	t.Parallel()

	candidates := testCandidates()

	ranked, err := Rank([]float32{1, 0}, candidates, 10, StrategyBasic, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ranked) != len(candidates) {
		t.Fatalf("expected min(k, corpus)=%d results, got %d", len(candidates), len(ranked))
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("results not in descending order: %v", ranked)
		}
		if ranked[i].Rank != ranked[i-1].Rank+1 {
			t.Fatalf("ranks not consecutive: %v", ranked)
		}
	}
}

func TestRankTiesKeepCorpusOrder(t *testing.T) {
	t.Parallel()

	candidates := []talent.Candidate{
		{Name: "First", Embedding: []float32{1, 0}},
		{Name: "Second", Embedding: []float32{1, 0}},
		{Name: "Third", Embedding: []float32{1, 0}},
	}

	for run := 0; run < 5; run++ {
		ranked, err := Rank([]float32{1, 0}, candidates, 3, StrategyBasic, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, name := range []string{"First", "Second", "Third"} {
			if ranked[i].Candidate.Name != name {
				t.Fatalf("tie order not stable on run %d: %v", run, ranked)
			}
		}
	}
}

func TestRankEmptyCorpus(t *testing.T) {
	t.Parallel()

	ranked, err := Rank([]float32{1, 0}, nil, 5, StrategyBasic, nil)
	if err != nil {
		t.Fatalf("empty corpus must not error: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %v", ranked)
	}
}

func TestRankUnknownStrategy(t *testing.T) {
	t.Parallel()

	if _, err := Rank([]float32{1, 0}, testCandidates(), 1, "bogus", nil); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestRankRejectsNonPositiveK(t *testing.T) {
	t.Parallel()

	if _, err := Rank([]float32{1, 0}, testCandidates(), 0, StrategyBasic, nil); err == nil {
		t.Fatalf("expected error for k=0")
	}
}

func TestRankDimensionMismatchIsFatal(t *testing.T) {
	t.Parallel()

	candidates := []talent.Candidate{
		{Name: "Alice", Embedding: []float32{1, 0}},
		{Name: "Broken", Embedding: []float32{1, 0, 0}},
	}

	if _, err := Rank([]float32{1, 0}, candidates, 2, StrategyBasic, nil); err == nil {
		t.Fatalf("expected error for mismatched dimensions")
	}
}

func TestWeightedWithEmptyWeightsEqualsBasic(t *testing.T) {
	t.Parallel()

	query := []float32{0.7, 0.3}

	basic, err := Rank(query, testCandidates(), 2, StrategyBasic, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	weighted, err := Rank(query, testCandidates(), 2, StrategyWeighted, map[string]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range basic {
		if basic[i].Candidate.Name != weighted[i].Candidate.Name || basic[i].Score != weighted[i].Score {
			t.Fatalf("weighted with empty weights diverged from basic:\nbasic    %v\nweighted %v", basic, weighted)
		}
	}
}

func TestWeightedTermBoostReorders(t *testing.T) {
	t.Parallel()

	// Bob scores 0 on cosine but gets boosted past Alice by the ops term.
	ranked, err := Rank([]float32{1, 0}, testCandidates(), 2, StrategyWeighted, map[string]float64{"ops": 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ranked[0].Candidate.Name != "Bob" {
		t.Fatalf("expected Bob boosted to the top, got %v", ranked)
	}
	if math.Abs(ranked[0].Score-1.5) > 1e-9 {
		t.Fatalf("expected boosted score 1.5, got %v", ranked[0].Score)
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		v1, v2 []float32
		expect float64
	}{
		{name: "identical", v1: []float32{1, 0}, v2: []float32{1, 0}, expect: 1},
		{name: "orthogonal", v1: []float32{1, 0}, v2: []float32{0, 1}, expect: 0},
		{name: "opposite", v1: []float32{1, 0}, v2: []float32{-1, 0}, expect: -1},
		{name: "zero vector", v1: []float32{0, 0}, v2: []float32{1, 0}, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CosineSimilarity(tt.v1, tt.v2)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}

	if _, err := CosineSimilarity([]float32{1}, []float32{1, 2}); err == nil {
		t.Fatalf("expected error for size mismatch")
	}
}
