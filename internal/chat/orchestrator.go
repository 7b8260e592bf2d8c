// Package chat sequences intent analysis, candidate retrieval and response
// synthesis into one request/response unit. The orchestrator is the only
// place a failure may be swallowed into a degraded reply; everything below
// it surfaces failures explicitly.
package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/intent"
	"github.com/recruitkit/talent-scout/internal/logger"
	"github.com/recruitkit/talent-scout/internal/ranking"
	"github.com/recruitkit/talent-scout/internal/respond"
	"github.com/recruitkit/talent-scout/internal/search"
)

// apologyMessage is returned when orchestration itself faults.
const apologyMessage = "I'm sorry, I encountered an error processing your request. Please try again."

const defaultTopK = 5

// Candidate is the embedding-free projection of a ranked candidate returned
// to callers.
type Candidate struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Skills   string  `json:"skills"`
	Bio      string  `json:"bio"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

// Result is the outcome of one handled message. Success is false only for
// unexpected orchestration faults, never for provider failures, which
// degrade into a valid reply instead.
type Result struct {
	Reply      string      `json:"message"`
	Candidates []Candidate `json:"candidates"`
	Success    bool        `json:"success"`
}

// Deps aggregates the collaborators of the orchestrator.
type Deps struct {
	Search      *search.Service
	Analyzer    *intent.Analyzer
	Synthesizer *respond.Synthesizer
	Logger      *zap.Logger
}

// Orchestrator handles chat messages end to end.
type Orchestrator struct {
	deps Deps
	topK int
}

// NewOrchestrator creates an Orchestrator. topK bounds the candidates
// retrieved per message; non-positive values fall back to the default.
func NewOrchestrator(deps Deps, topK int) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if topK < 1 {
		topK = defaultTopK
	}
	return &Orchestrator{deps: deps, topK: topK}
}

// Handle processes one user message: retrieve candidates (an embedding
// failure yields an empty list, not an abort), classify intent, synthesize
// the reply, and record the turn on the session. The returned result is
// always usable.
func (o *Orchestrator) Handle(ctx context.Context, session *Session, text string) (result Result) {
	log := o.deps.Logger

	// Orchestration itself must never take the process down; a fault here
	// becomes the one case where Success is false.
	defer func() {
		if r := recover(); r != nil {
			log.Error("chat orchestration fault", zap.Any("panic", r))
			result = Result{
				Reply:      apologyMessage,
				Candidates: []Candidate{},
				Success:    false,
			}
		}
	}()

	log.Info("handling chat message",
		zap.String("session_id", sessionID(session)),
		zap.String("query_preview", logger.TruncateForLog(text, 120)),
	)

	ranked, err := o.deps.Search.RankForQuery(ctx, text, o.topK, ranking.StrategyBasic, nil)
	if err != nil {
		log.Warn("retrieval failed, continuing without candidates", zap.Error(err))
		ranked = nil
	}

	in := o.deps.Analyzer.Analyze(ctx, text)

	reply := o.deps.Synthesizer.Synthesize(ctx, text, in, ranked)

	session.Append(text, reply)

	log.Info("chat message handled",
		zap.String("session_id", sessionID(session)),
		zap.Int("candidates", len(ranked)),
		zap.Float64("intent_confidence", in.Confidence),
	)

	return Result{
		Reply:      reply,
		Candidates: project(ranked),
		Success:    true,
	}
}

func project(ranked []ranking.RankedCandidate) []Candidate {
	candidates := make([]Candidate, len(ranked))
	for i, r := range ranked {
		candidates[i] = Candidate{
			Name:     r.Candidate.Name,
			Location: r.Candidate.Location,
			Skills:   r.Candidate.Skills,
			Bio:      r.Candidate.Bio,
			Score:    r.Score,
			Rank:     r.Rank,
		}
	}
	return candidates
}

func sessionID(session *Session) string {
	if session == nil {
		return ""
	}
	return session.ID
}
