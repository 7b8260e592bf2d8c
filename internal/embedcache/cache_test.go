package embedcache

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/ai"
)

type stubEmbedder struct {
	calls  int32
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func TestGetOrComputeCachesSecondCall(t *testing.T) {
	t.Parallel()

	stub := &stubEmbedder{vector: []float32{0.1, 0.2}}
	cache := New(stub, "", zap.NewNop())

	first, err := cache.GetOrCompute(context.Background(), "golang backend engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := cache.GetOrCompute(context.Background(), "golang backend engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if atomic.LoadInt32(&stub.calls) != 1 {
		t.Fatalf("expected exactly one provider call, got %d", stub.calls)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected vectors: %v, %v", first, second)
	}
}

func TestGetOrComputeRejectsEmptyText(t *testing.T) {
	t.Parallel()

	stub := &stubEmbedder{vector: []float32{1}}
	cache := New(stub, "", zap.NewNop())

	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := cache.GetOrCompute(context.Background(), input); !errors.Is(err, ai.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", input, err)
		}
	}

	if atomic.LoadInt32(&stub.calls) != 0 {
		t.Fatalf("provider must not be called for invalid input, got %d calls", stub.calls)
	}
}

func TestGetOrComputeDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	stub := &stubEmbedder{err: ai.ErrProviderUnavailable}
	cache := New(stub, "", zap.NewNop())

	if _, err := cache.GetOrCompute(context.Background(), "query"); !errors.Is(err, ai.ErrProviderUnavailable) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("failed lookups must not be cached")
	}

	// Once the provider recovers, the same text computes fine.
	stub.err = nil
	stub.vector = []float32{0.5}
	vector, err := cache.GetOrCompute(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if len(vector) != 1 {
		t.Fatalf("unexpected vector: %v", vector)
	}
}

func TestConcurrentMissesCollapse(t *testing.T) {
	t.Parallel()

	stub := &stubEmbedder{vector: []float32{0.3, 0.7}}
	cache := New(stub, "", zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetOrCompute(context.Background(), "same text"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// singleflight collapses in-flight misses; a small number of extra
	// calls is tolerated, a call per goroutine is not.
	if calls := atomic.LoadInt32(&stub.calls); calls > 2 {
		t.Fatalf("expected at most 2 provider calls, got %d", calls)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "embeddings.json.gz")

	stub := &stubEmbedder{vector: []float32{1, 2, 3}}
	cache := New(stub, path, zap.NewNop())

	if _, err := cache.GetOrCompute(context.Background(), "persisted text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cache.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := New(&stubEmbedder{err: errors.New("must not be called")}, path, zap.NewNop())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	vector, err := reloaded.GetOrCompute(context.Background(), "persisted text")
	if err != nil {
		t.Fatalf("unexpected error after reload: %v", err)
	}
	if len(vector) != 3 || vector[2] != 3 {
		t.Fatalf("unexpected vector after reload: %v", vector)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	t.Parallel()

	cache := New(&stubEmbedder{}, filepath.Join(t.TempDir(), "absent.json.gz"), zap.NewNop())
	if err := cache.Load(); err != nil {
		t.Fatalf("missing snapshot must not fail load: %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache")
	}
}
