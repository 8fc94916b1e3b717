package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openregulatory/regkb/pkg/types"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// GeminiClient implements the Client interface for Google Gemini models.
type GeminiClient struct {
	config     Config
	httpClient *http.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(config Config) *GeminiClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultGeminiBaseURL
	}
	if config.Model == "" {
		config.Model = defaultGeminiModel
	}

	return &GeminiClient{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// geminiRequest represents the request structure for the Gemini API.
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

// geminiContent represents content in Gemini format.
type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

// geminiPart represents a part of content.
type geminiPart struct {
	Text string `json:"text"`
}

// geminiGenerationConfig represents generation configuration.
type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"maxOutputTokens,omitempty"`
}

// geminiResponse represents the response from the Gemini API.
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

// geminiCandidate represents a candidate response.
type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

// geminiError represents an error response.
type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Chat implements the Client interface for Gemini.
func (g *GeminiClient) Chat(ctx context.Context, messages []types.Message) (*Response, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	contents := make([]geminiContent, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		// Gemini names the assistant role "model".
		if role == RoleAssistant {
			role = "model"
		} else if role == RoleSystem {
			// Gemini has no system role, prepend to the first user message.
			if len(contents) == 0 {
				contents = append(contents, geminiContent{
					Role:  "user",
					Parts: []geminiPart{{Text: msg.Content}},
				})
			} else {
				for i := len(contents) - 1; i >= 0; i-- {
					if contents[i].Role == "user" {
						contents[i].Parts[0].Text = msg.Content + "\n\n" + contents[i].Parts[0].Text
						break
					}
				}
			}
			continue
		}

		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	req := geminiRequest{Contents: contents}
	if g.config.Temperature != nil || g.config.MaxTokens != nil {
		genCfg := &geminiGenerationConfig{}
		if g.config.Temperature != nil {
			genCfg.Temperature = float64(*g.config.Temperature)
		}
		if g.config.MaxTokens != nil {
			genCfg.MaxTokens = *g.config.MaxTokens
		}
		req.GenerationConfig = genCfg
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.config.BaseURL, g.config.Model, g.config.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewRateLimitError(fmt.Sprintf("gemini rate limit: %s", string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: "gemini",
			Err:      fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if geminiResp.Error != nil {
		return nil, &ProviderError{
			Provider: "gemini",
			Err:      fmt.Errorf("api error: %s", geminiResp.Error.Message),
		}
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}

	candidate := geminiResp.Candidates[0]
	return &Response{
		Content:      candidate.Content.Parts[0].Text,
		Model:        g.config.Model,
		FinishReason: candidate.FinishReason,
	}, nil
}

// Close cleans up resources (no-op for Gemini client).
func (g *GeminiClient) Close() error {
	return nil
}
