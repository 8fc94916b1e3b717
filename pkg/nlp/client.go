package nlp

import (
	"context"

	"github.com/openregulatory/regkb/pkg/types"
)

// Client defines the interface for conversational generation. Retrieval and
// citation selection happen outside this boundary; implementations only turn
// a message sequence into a reply.
type Client interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, messages []types.Message) (*Response, error)

	// Close cleans up any resources.
	Close() error
}

const (
	// RoleSystem represents a system message.
	RoleSystem = "system"
	// RoleUser represents a user message.
	RoleUser = "user"
	// RoleAssistant represents an assistant message.
	RoleAssistant = "assistant"
)

// Response is the generated reply from a provider.
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Config holds provider-agnostic generation settings.
type Config struct {
	Model       string   `json:"model"`
	APIKey      string   `json:"api_key,omitempty"`
	BaseURL     string   `json:"base_url,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// NewMessage creates a new message with the specified role and content.
func NewMessage(role, content string) types.Message {
	return types.Message{
		Role:    role,
		Content: content,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) types.Message {
	return NewMessage(RoleSystem, content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) types.Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) types.Message {
	return NewMessage(RoleAssistant, content)
}
