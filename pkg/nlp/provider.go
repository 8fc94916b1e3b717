package nlp

import "fmt"

// Supported generation providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewClient constructs a generation client for the named provider.
func NewClient(provider string, config Config) (Client, error) {
	switch provider {
	case ProviderGemini, "":
		return NewGeminiClient(config), nil
	case ProviderOpenAI:
		return NewOpenAIClient(config), nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %q", provider)
	}
}
