// Package search exposes the retrieval operations over the embedding cache
// and the candidate corpus.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/ai"
	"github.com/recruitkit/talent-scout/internal/embedcache"
	"github.com/recruitkit/talent-scout/internal/logger"
	"github.com/recruitkit/talent-scout/internal/ranking"
	"github.com/recruitkit/talent-scout/internal/talent"
)

// Service ranks candidates for free-text queries.
type Service struct {
	cache  *embedcache.Cache
	corpus *talent.Corpus
	logger *zap.Logger
}

// Status describes the loaded corpus.
type Status struct {
	Count int  `json:"count"`
	Ready bool `json:"ready"`
}

// New creates a retrieval service over the given cache and corpus.
func New(cache *embedcache.Cache, corpus *talent.Corpus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cache: cache, corpus: corpus, logger: log}
}

// RankForQuery embeds the query through the cache and returns the top k
// candidates under the named strategy. Provider failures surface to the
// caller; nothing is retried here.
func (s *Service) RankForQuery(ctx context.Context, query string, k int, strategy string, weights map[string]float64) ([]ranking.RankedCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ai.ErrInvalidInput)
	}

	vector, err := s.cache.GetOrCompute(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	ranked, err := ranking.Rank(vector, s.corpus.All(), k, strategy, weights)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("ranked candidates for query",
		zap.String("query_preview", logger.TruncateForLog(query, 120)),
		zap.String("strategy", strategy),
		zap.Int("top_k", k),
		zap.Int("results", len(ranked)),
	)

	return ranked, nil
}

// Status returns the corpus size and readiness.
func (s *Service) Status() Status {
	return Status{
		Count: s.corpus.Len(),
		Ready: s.corpus.Ready(),
	}
}
