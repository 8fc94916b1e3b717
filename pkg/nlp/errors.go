package nlp

import "errors"

// Common generation client errors
var (
	// ErrNoMessages indicates a chat call was made with no messages.
	ErrNoMessages = errors.New("no messages provided")

	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("the model returned an empty response")

	// ErrRateLimit indicates the provider rate limit has been exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// RateLimitError represents a rate limit error with optional custom message.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limit exceeded"
	}
	return e.Message
}

// Is implements errors.Is support for RateLimitError so wrapped instances
// can be matched against &RateLimitError{}.
func (e *RateLimitError) Is(target error) bool {
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new rate limit error with optional custom message.
func NewRateLimitError(message ...string) *RateLimitError {
	err := &RateLimitError{}
	if len(message) > 0 {
		err.Message = message[0]
	}
	return err
}

// ProviderError wraps a provider failure with the provider name so callers
// can log which backend misbehaved without parsing messages.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for ProviderError.
func (e *ProviderError) Is(target error) bool {
	_, ok := target.(*ProviderError)
	return ok
}
