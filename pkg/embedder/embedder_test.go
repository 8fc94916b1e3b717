package embedder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openregulatory/regkb/pkg/embedder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIEmbedder(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		config   embedder.Config
		wantDims int
	}{
		{
			name:     "default model",
			apiKey:   "test-api-key",
			config:   embedder.Config{},
			wantDims: 1536,
		},
		{
			name:     "large model",
			apiKey:   "test-api-key",
			config:   embedder.Config{Model: "text-embedding-3-large"},
			wantDims: 3072,
		},
		{
			name:     "custom base URL",
			apiKey:   "test-api-key",
			config:   embedder.Config{Model: "text-embedding-ada-002", BaseURL: "https://api.example.com"},
			wantDims: 1536,
		},
		{
			name:     "explicit dimensions override",
			apiKey:   "test-api-key",
			config:   embedder.Config{Model: "custom-model", Dimensions: 768},
			wantDims: 768,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := embedder.NewOpenAIEmbedder(tt.apiKey, tt.config)
			require.NotNil(t, client)
			assert.Equal(t, tt.wantDims, client.Dimensions())
		})
	}
}

func TestEmbedderInterface(t *testing.T) {
	var _ embedder.Client = (*embedder.OpenAIEmbedder)(nil)
	var _ embedder.Client = (*embedder.LocalEmbedder)(nil)
	var _ embedder.Client = (*embedder.RetryClient)(nil)
}

func TestEmbedEmptyInput(t *testing.T) {
	client := embedder.NewOpenAIEmbedder("test-key", embedder.Config{})
	_, err := client.Embed(context.Background(), nil)
	assert.ErrorIs(t, err, embedder.ErrEmptyInput)
}

// flakyClient fails a fixed number of times before succeeding.
type flakyClient struct {
	failures  int
	calls     int
	transient bool
}

func (f *flakyClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		if f.transient {
			return nil, errors.New("503 service unavailable")
		}
		return nil, errors.New("invalid api key")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

func (f *flakyClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *flakyClient) Dimensions() int { return 3 }
func (f *flakyClient) Close() error    { return nil }

func TestRetryClientRecovers(t *testing.T) {
	flaky := &flakyClient{failures: 2, transient: true}
	client := embedder.NewRetryClient(flaky, &embedder.RetryConfig{
		MaxRetries:        3,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	})

	vecs, err := client.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetryClientNonRetryable(t *testing.T) {
	flaky := &flakyClient{failures: 10, transient: false}
	client := embedder.NewRetryClient(flaky, &embedder.RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	})

	_, err := client.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, 1, flaky.calls, "non-retryable errors must fail immediately")
}

func TestRetryClientExhaustsRetries(t *testing.T) {
	flaky := &flakyClient{failures: 10, transient: true}
	client := embedder.NewRetryClient(flaky, &embedder.RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
	})

	_, err := client.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 retries")
	assert.Equal(t, 3, flaky.calls)
}

func TestEmbeddingErrorIs(t *testing.T) {
	err := &embedder.EmbeddingError{Provider: "openai", Err: errors.New("boom")}
	assert.True(t, errors.Is(err, &embedder.EmbeddingError{}))
	assert.Contains(t, err.Error(), "openai")
}
