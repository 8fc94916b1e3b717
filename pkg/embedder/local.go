package embedder

import (
	"context"
	"fmt"

	eelib "github.com/soundprediction/go-embedeverything/pkg/embedder"
)

// defaultLocalModel is the sentence-transformer model the deployed index
// was built with. Changing it invalidates every persisted index.
const defaultLocalModel = "all-MiniLM-L6-v2"

const defaultLocalDimensions = 384

// LocalEmbedder implements the Client interface using an in-process
// sentence-transformer model, so ingestion and queries need no network.
type LocalEmbedder struct {
	client *eelib.Embedder
	config Config
}

// NewLocalEmbedder creates a local embedding client.
func NewLocalEmbedder(config Config) (*LocalEmbedder, error) {
	if config.Model == "" {
		config.Model = defaultLocalModel
	}
	if config.Dimensions <= 0 {
		config.Dimensions = defaultLocalDimensions
	}

	client, err := eelib.NewEmbedder(config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create local embedder: %w", err)
	}

	return &LocalEmbedder{
		client: client,
		config: config,
	}, nil
}

// Embed generates embeddings for the given texts.
func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	// go-embedeverything does not support context yet
	embeddings, err := e.client.Embed(texts)
	if err != nil {
		return nil, &EmbeddingError{Provider: "local", Err: err}
	}
	if len(embeddings) != len(texts) {
		return nil, &EmbeddingError{Provider: "local", Err: ErrNoEmbeddings}
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *LocalEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (e *LocalEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// Close cleans up any resources.
func (e *LocalEmbedder) Close() error {
	e.client.Close()
	return nil
}
