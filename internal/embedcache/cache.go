// Package embedcache memoizes embedding provider calls. The cache is a pure
// memo layer: a missing key only means "not computed yet", never that the
// text is invalid. Values are a pure function of the key, so last-writer-wins
// on concurrent stores is safe.
package embedcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/recruitkit/talent-scout/internal/ai"
)

// Cache is a durable text→vector memo in front of an ai.Embedder.
type Cache struct {
	embedder ai.Embedder
	path     string
	logger   *zap.Logger

	mu      sync.RWMutex
	entries map[string][]float32

	// group collapses concurrent misses for the same text into a single
	// provider call.
	group singleflight.Group
}

// New creates a cache backed by the given embedder. path names the snapshot
// file; an empty path disables persistence.
func New(embedder ai.Embedder, path string, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}

	return &Cache{
		embedder: embedder,
		path:     path,
		logger:   log,
		entries:  make(map[string][]float32),
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrCompute returns the embedding for text, invoking the provider at most
// once per distinct text. Empty or whitespace-only text is rejected with
// ai.ErrInvalidInput before any provider call. Provider failures are not
// cached and surface as ai.ErrProviderUnavailable from the embedder.
func (c *Cache) GetOrCompute(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ai.ErrInvalidInput)
	}

	c.mu.RLock()
	vector, ok := c.entries[text]
	c.mu.RUnlock()
	if ok {
		return vector, nil
	}

	result, err, _ := c.group.Do(text, func() (any, error) {
		// Re-check under the flight: another goroutine may have stored
		// the entry between the read above and Do.
		c.mu.RLock()
		cached, ok := c.entries[text]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		computed, err := c.embedder.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		if len(computed) == 0 {
			return nil, fmt.Errorf("%w: embedder returned empty vector", ai.ErrProviderUnavailable)
		}

		c.mu.Lock()
		c.entries[text] = computed
		c.mu.Unlock()

		return computed, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]float32), nil
}

// Load reads a previously saved snapshot. A missing file is not an error;
// the cache simply starts empty.
func (c *Cache) Load() error {
	if c.path == "" {
		return nil
	}

	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open embedding cache %q: %w", c.path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read embedding cache %q: %w", c.path, err)
	}
	defer gz.Close()

	var entries map[string][]float32
	if err := json.NewDecoder(gz).Decode(&entries); err != nil {
		return fmt.Errorf("decode embedding cache %q: %w", c.path, err)
	}

	c.mu.Lock()
	c.entries = entries
	if c.entries == nil {
		c.entries = make(map[string][]float32)
	}
	c.mu.Unlock()

	c.logger.Info("embedding cache loaded",
		zap.String("path", c.path),
		zap.Int("entries", len(entries)),
	)

	return nil
}

// Save writes the cache to its snapshot file. Written via a temp file and
// rename so a crash mid-save leaves the previous snapshot intact.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	entries := make(map[string][]float32, len(c.entries))
	for k, v := range c.entries {
		entries[k] = v
	}
	c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := writeGzipJSON(tmp, entries); err != nil {
		return fmt.Errorf("write embedding cache %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace embedding cache %q: %w", c.path, err)
	}

	c.logger.Info("embedding cache saved",
		zap.String("path", c.path),
		zap.Int("entries", len(entries)),
	)

	return nil
}

func writeGzipJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(v); err != nil {
		gz.Close()
		f.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
