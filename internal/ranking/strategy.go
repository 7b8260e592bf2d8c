package ranking

import (
	"fmt"
	"strings"

	"github.com/recruitkit/talent-scout/internal/talent"
)

// Strategy names accepted by Rank.
const (
	StrategyBasic    = "basic"
	StrategyWeighted = "weighted"
)

// ErrUnknownStrategy marks an unsupported strategy name. A configuration
// error: the call fails instead of silently falling back to basic scoring.
var ErrUnknownStrategy = fmt.Errorf("unknown ranking strategy")

// scoreFunc combines the base cosine similarity and the caller-supplied
// weights into the candidate's final score.
type scoreFunc func(base float64, candidate *talent.Candidate, weights map[string]float64) float64

func resolveStrategy(name string) (scoreFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyBasic, "":
		return scoreBasic, nil
	case StrategyWeighted:
		return scoreWeighted, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// scoreBasic is pure cosine similarity.
func scoreBasic(base float64, _ *talent.Candidate, _ map[string]float64) float64 {
	return base
}

// scoreWeighted adds a term boost on top of cosine similarity: every weights
// key that matches the candidate's location, skills or verticals
// (case-insensitive substring) contributes its weight to the score. With no
// weights the result is identical to the basic strategy.
func scoreWeighted(base float64, candidate *talent.Candidate, weights map[string]float64) float64 {
	if len(weights) == 0 {
		return base
	}

	haystack := strings.ToLower(candidate.Location + "\n" + candidate.Skills + "\n" + candidate.Verticals)

	score := base
	for term, weight := range weights {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(haystack, term) {
			score += weight
		}
	}

	return score
}
