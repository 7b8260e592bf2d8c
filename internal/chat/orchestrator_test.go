package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/ai"
	"github.com/recruitkit/talent-scout/internal/embedcache"
	"github.com/recruitkit/talent-scout/internal/intent"
	"github.com/recruitkit/talent-scout/internal/respond"
	"github.com/recruitkit/talent-scout/internal/search"
	"github.com/recruitkit/talent-scout/internal/talent"
)

type mapEmbedder struct {
	vectors map[string][]float32
}

func (m *mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector, ok := m.vectors[text]
	if !ok {
		return nil, ai.ErrProviderUnavailable
	}
	return vector, nil
}

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) GenerateContent(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newOrchestrator(t *testing.T, embedder ai.Embedder, generator ai.Generator) *Orchestrator {
	t.Helper()

	csv := "First Name,Last Name,City,Country,Skills,Profile Description,Content Verticals,Past Creators\n" +
		"Alice,Reyes,Manila,Philippines,video editing,Editor.,Lifestyle,MrBeast\n"

	path := filepath.Join(t.TempDir(), "profiles.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	cache := embedcache.New(embedder, "", zap.NewNop())
	corpus, err := talent.NewStore(path, "", cache, zap.NewNop()).Build(context.Background())
	if err != nil {
		t.Fatalf("build corpus: %v", err)
	}

	return NewOrchestrator(Deps{
		Search:      search.New(cache, corpus, zap.NewNop()),
		Analyzer:    intent.NewAnalyzer(generator, zap.NewNop()),
		Synthesizer: respond.NewSynthesizer(generator, zap.NewNop()),
		Logger:      zap.NewNop(),
	}, 5)
}

func aliceEmbedder() *mapEmbedder {
	alice := talent.Profile{FirstName: "Alice", LastName: "Reyes", Skills: "video editing",
		Description: "Editor.", Verticals: "Lifestyle", PastWork: "MrBeast"}

	return &mapEmbedder{vectors: map[string][]float32{
		alice.CombinedFeatures(): {1, 0},
		"need a video editor":    {1, 0},
	}}
}

func TestHandleHappyPath(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{response: "Alice is a strong match for your opening."}
	orchestrator := newOrchestrator(t, aliceEmbedder(), generator)

	session := NewSession()
	result := orchestrator.Handle(context.Background(), session, "need a video editor")

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Reply != "Alice is a strong match for your opening." {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].Name != "Alice Reyes" {
		t.Fatalf("unexpected candidates: %+v", result.Candidates)
	}
	if result.Candidates[0].Rank != 1 || result.Candidates[0].Score != 1.0 {
		t.Fatalf("unexpected ranking fields: %+v", result.Candidates[0])
	}
	if session.Len() != 1 {
		t.Fatalf("expected one recorded turn, got %d", session.Len())
	}
	if session.Turns()[0].Query != "need a video editor" {
		t.Fatalf("unexpected turn: %+v", session.Turns()[0])
	}
}

func TestHandleEmbeddingFailureDegradesGracefully(t *testing.T) {
	t.Parallel()

	// The generator also fails so the synthesizer cannot dress up the
	// empty result; the reply must be the fixed no-match message.
	generator := &stubGenerator{err: ai.ErrProviderUnavailable}
	orchestrator := newOrchestrator(t, aliceEmbedder(), generator)

	result := orchestrator.Handle(context.Background(), NewSession(), "text the embedder has never seen")

	if !result.Success {
		t.Fatalf("provider failure must not flip success, got %+v", result)
	}
	if len(result.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", result.Candidates)
	}
	if result.Reply != respond.NoMatchMessage {
		t.Fatalf("expected no-match fallback, got %q", result.Reply)
	}
}

func TestHandleGenerationFailureUsesFallback(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{err: errors.New("model overloaded")}
	orchestrator := newOrchestrator(t, aliceEmbedder(), generator)

	result := orchestrator.Handle(context.Background(), NewSession(), "need a video editor")

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("expected ranked candidates despite generation failure, got %+v", result.Candidates)
	}

	// Deterministic fallback built from the top candidate.
	if result.Reply == respond.NoMatchMessage {
		t.Fatalf("reply must use the top-1 fallback, not the no-match message")
	}
	if !strings.Contains(result.Reply, "Alice Reyes") {
		t.Fatalf("fallback should mention the top candidate, got %q", result.Reply)
	}
}

func TestHandleEmptyTextIsAbsorbed(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{err: ai.ErrProviderUnavailable}
	orchestrator := newOrchestrator(t, aliceEmbedder(), generator)

	result := orchestrator.Handle(context.Background(), NewSession(), "   ")

	if !result.Success {
		t.Fatalf("invalid input must degrade, not fail: %+v", result)
	}
	if result.Reply != respond.NoMatchMessage {
		t.Fatalf("expected no-match reply, got %q", result.Reply)
	}
}

func TestHandleInternalFault(t *testing.T) {
	t.Parallel()

	// A nil search service makes orchestration itself panic; the recover
	// path must produce the apology with success=false.
	orchestrator := NewOrchestrator(Deps{
		Analyzer:    intent.NewAnalyzer(&stubGenerator{response: "{}"}, zap.NewNop()),
		Synthesizer: respond.NewSynthesizer(&stubGenerator{response: "ok"}, zap.NewNop()),
		Logger:      zap.NewNop(),
	}, 5)

	result := orchestrator.Handle(context.Background(), NewSession(), "anything")

	if result.Success {
		t.Fatalf("expected success=false on internal fault")
	}
	if result.Reply != apologyMessage {
		t.Fatalf("expected apology, got %q", result.Reply)
	}
	if len(result.Candidates) != 0 {
		t.Fatalf("expected empty candidates, got %+v", result.Candidates)
	}
}
