package embedder

import (
	"context"
	"errors"
	"fmt"
)

// Common embedding errors
var (
	// ErrNoEmbeddings indicates the provider returned no vectors.
	ErrNoEmbeddings = errors.New("no embeddings returned")
	// ErrEmptyInput indicates an empty input batch.
	ErrEmptyInput = errors.New("no texts to embed")
)

// EmbeddingError wraps a provider failure at the embedding boundary. It is
// always propagated to the caller, never swallowed into an empty result.
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Is implements errors.Is support for EmbeddingError.
func (e *EmbeddingError) Is(target error) bool {
	_, ok := target.(*EmbeddingError)
	return ok
}

// Client defines the embedding boundary. Implementations must be
// deterministic for a given model/version so that index-time and
// query-time vectors remain comparable.
type Client interface {
	// Embed generates one fixed-width vector per input text, in input
	// order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the width of vectors produced by this client.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds provider-independent embedder settings.
type Config struct {
	// Model is the embedding model name.
	Model string
	// BaseURL overrides the provider endpoint for OpenAI-compatible
	// services.
	BaseURL string
	// Dimensions overrides the reported vector width when the model is
	// not one of the known defaults.
	Dimensions int
	// BatchSize caps the number of texts sent per provider request.
	// Zero means the provider default.
	BatchSize int
}
