// Package ai defines the provider-neutral capabilities the matching core
// consumes: text embedding and text completion. Concrete providers live in
// subpackages and report failures through the sentinel errors below so that
// callers can tell caller mistakes from provider outages.
package ai

import (
	"context"
	"errors"
)

var (
	// ErrInvalidInput marks input rejected before any provider call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable marks a failed or timed out provider call.
	// The failed text is safe to retry later; nothing was cached.
	ErrProviderUnavailable = errors.New("ai provider unavailable")
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a free-text completion for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
