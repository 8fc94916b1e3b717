package embedder

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Known dimensions for OpenAI embedding models.
var openAIModelDimensions = map[string]int{
	"text-embedding-3-small":  1536,
	"text-embedding-3-large":  3072,
	"text-embedding-ada-002":  1536,
}

const (
	defaultOpenAIModel     = "text-embedding-3-small"
	defaultOpenAIBatchSize = 100
)

// OpenAIEmbedder implements the Client interface using the OpenAI
// embeddings API, or any OpenAI-compatible endpoint via Config.BaseURL.
type OpenAIEmbedder struct {
	client *openai.Client
	config Config
}

// NewOpenAIEmbedder creates a new OpenAI embedding client.
func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaultOpenAIBatchSize
	}
	if config.Dimensions <= 0 {
		if dims, ok := openAIModelDimensions[config.Model]; ok {
			config.Dimensions = dims
		} else {
			config.Dimensions = openAIModelDimensions[defaultOpenAIModel]
		}
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// Embed generates embeddings for the given texts, batching requests per
// the configured batch size and preserving input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.config.BatchSize {
		end := start + e.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(e.config.Model),
		})
		if err != nil {
			return nil, &EmbeddingError{Provider: "openai", Err: err}
		}
		if len(resp.Data) != end-start {
			return nil, &EmbeddingError{Provider: "openai", Err: ErrNoEmbeddings}
		}

		for _, item := range resp.Data {
			embeddings = append(embeddings, item.Embedding)
		}
	}

	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *OpenAIEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, &EmbeddingError{Provider: "openai", Err: ErrNoEmbeddings}
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// Close cleans up any resources.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
