package nlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openregulatory/regkb/pkg/types"
)

// scriptedClient fails a fixed number of times before succeeding.
type scriptedClient struct {
	failures int
	err      error
	calls    int
}

func (s *scriptedClient) Chat(_ context.Context, _ []types.Message) (*Response, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, s.err
	}
	return &Response{Content: "ok"}, nil
}

func (s *scriptedClient) Close() error { return nil }

func fastRetryConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:        maxRetries,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryClientRecovers(t *testing.T) {
	stub := &scriptedClient{failures: 2, err: errors.New("503 service unavailable")}
	client := NewRetryClient(stub, fastRetryConfig(3))

	resp, err := client.Chat(context.Background(), []types.Message{NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, stub.calls)
}

func TestRetryClientNonRetryableFailsImmediately(t *testing.T) {
	stub := &scriptedClient{failures: 10, err: ErrNoMessages}
	client := NewRetryClient(stub, fastRetryConfig(3))

	_, err := client.Chat(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMessages)
	assert.Equal(t, 1, stub.calls)
}

func TestRetryClientExhaustsRetries(t *testing.T) {
	stub := &scriptedClient{failures: 10, err: NewRateLimitError()}
	client := NewRetryClient(stub, fastRetryConfig(2))

	_, err := client.Chat(context.Background(), []types.Message{NewUserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 retries")
	assert.Equal(t, 3, stub.calls)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"rate limit typed", NewRateLimitError(), true},
		{"rate limit sentinel", ErrRateLimit, true},
		{"server error", errors.New("500 internal server error"), true},
		{"gateway timeout", errors.New("504 gateway timeout"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"context cancelled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"no messages", ErrNoMessages, false},
		{"bad request", errors.New("400 bad request"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}

func TestProviderErrorWrapping(t *testing.T) {
	inner := errors.New("boom")
	err := &ProviderError{Provider: "gemini", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.ErrorIs(t, err, &ProviderError{})
	assert.Contains(t, err.Error(), "gemini")
}
