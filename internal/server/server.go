// Package server is the thin HTTP boundary over the retrieval service and
// the chat orchestrator. It only marshals requests and responses; all
// matching behavior lives below it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/ai"
	"github.com/recruitkit/talent-scout/internal/chat"
	"github.com/recruitkit/talent-scout/internal/ranking"
	"github.com/recruitkit/talent-scout/internal/search"
)

const defaultTopK = 10

// Server serves the talent matching API.
type Server struct {
	search       *search.Service
	orchestrator *chat.Orchestrator
	logger       *zap.Logger

	// The frontend drives a single conversation; its session lives for
	// the process lifetime and is serialized here because sessions are
	// not safe for concurrent use.
	sessionMu sync.Mutex
	session   *chat.Session
}

// New creates a Server.
func New(searchService *search.Service, orchestrator *chat.Orchestrator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		search:       searchService,
		orchestrator: orchestrator,
		logger:       log,
		session:      chat.NewSession(),
	}
}

// Handler returns the route table with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /recommend", s.handleRecommend(ranking.StrategyBasic))
	mux.HandleFunc("POST /recommend/weighted", s.handleRecommend(ranking.StrategyWeighted))
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /health", s.handleHealth)
	return withCORS(mux)
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("http server listening", zap.String("address", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

type recommendRequest struct {
	JobDescription string             `json:"job_description"`
	TopK           int                `json:"top_k"`
	Weights        map[string]float64 `json:"weights"`
}

type recommendedCandidate struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Skills   string  `json:"skills"`
	Bio      string  `json:"bio"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

type recommendResponse struct {
	Strategy string                 `json:"strategy"`
	TopK     int                    `json:"top_k"`
	Results  []recommendedCandidate `json:"results"`
}

func (s *Server) handleRecommend(strategy string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.JobDescription == "" {
			writeError(w, http.StatusBadRequest, "job_description is required in request body")
			return
		}
		if req.TopK < 1 {
			req.TopK = defaultTopK
		}

		ranked, err := s.search.RankForQuery(r.Context(), req.JobDescription, req.TopK, strategy, req.Weights)
		if err != nil {
			s.writeRankError(w, err)
			return
		}

		results := make([]recommendedCandidate, len(ranked))
		for i, candidate := range ranked {
			results[i] = recommendedCandidate{
				Name:     candidate.Candidate.Name,
				Location: candidate.Candidate.Location,
				Skills:   candidate.Candidate.Skills,
				Bio:      candidate.Candidate.Bio,
				Score:    candidate.Score,
				Rank:     candidate.Rank,
			}
		}

		writeJSON(w, http.StatusOK, recommendResponse{
			Strategy: strategy,
			TopK:     req.TopK,
			Results:  results,
		})
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	s.sessionMu.Lock()
	result := s.orchestrator.Handle(r.Context(), s.session, req.Message)
	s.sessionMu.Unlock()

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

type healthResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Ready  bool   `json:"ready"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := s.search.Status()
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "healthy",
		Count:  status.Count,
		Ready:  status.Ready,
	})
}

func (s *Server) writeRankError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ai.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ranking.ErrUnknownStrategy):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrProviderUnavailable):
		s.logger.Error("embedding provider unavailable", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not generate embedding for job description")
	default:
		s.logger.Error("recommend failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// withCORS allows the local frontend to call the API from another origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
