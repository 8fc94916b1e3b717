// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"

	"github.com/openregulatory/regkb/pkg/types"
)

// MaxMessageLength bounds one chat message body.
const MaxMessageLength = 8192

// ErrMessageTooLong is returned when a chat message exceeds MaxMessageLength.
var ErrMessageTooLong = errors.New("message exceeds maximum length")

// ValidRoles defines acceptable message roles.
var ValidRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}

// Message represents one turn of conversation history.
type Message struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Validate performs validation on Message.
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Role) == "" {
		return errors.New("role cannot be empty")
	}
	if !ValidRoles[strings.ToLower(m.Role)] {
		return errors.New("invalid role: must be user, assistant, or system")
	}
	if strings.TrimSpace(m.Content) == "" {
		return errors.New("content cannot be empty")
	}
	if len(m.Content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string    `json:"message" binding:"required"`
	History []Message `json:"history"`
}

// Citation mirrors the citation shape of the original API.
type Citation struct {
	RuleNumber string `json:"rule_number"`
	Text       string `json:"text"`
	Source     string `json:"source"`
	Page       int    `json:"page"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response  string     `json:"response"`
	Citations []Citation `json:"citations"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	K     int    `json:"k"`
}

// SearchResult is one ranked hit in a search response.
type SearchResult struct {
	Rule       Rule     `json:"rule"`
	Score      float64  `json:"score"`
	Text       string   `json:"text"`
	Categories []string `json:"categories,omitempty"`
}

// SearchResponse is the body returned by POST /api/v1/search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// Rule mirrors the indexed rule record.
type Rule struct {
	RuleNumber string `json:"rule_number"`
	Text       string `json:"text"`
	Chapter    string `json:"chapter"`
	Section    string `json:"section"`
	Subsection string `json:"subsection,omitempty"`
	Page       int    `json:"page"`
	Source     string `json:"source"`
}

// RulesResponse is the body returned by the category listing endpoint.
type RulesResponse struct {
	Category string `json:"category,omitempty"`
	Rules    []Rule `json:"rules"`
}

// StatisticsResponse is the body returned by GET /api/v1/statistics.
type StatisticsResponse struct {
	TotalRules      int            `json:"total_rules"`
	ProcessedRules  int            `json:"processed_rules"`
	RulesBySource   map[string]int `json:"rules_by_source"`
	RulesByCategory map[string]int `json:"rules_by_category"`
	SkippedRules    int            `json:"skipped_rules"`
}

// ProcessResponse is the body returned by POST /api/v1/process-documents.
type ProcessResponse struct {
	Status          string `json:"status"`
	Processed       int    `json:"processed"`
	Skipped         int    `json:"skipped"`
	Documents       int    `json:"documents"`
	FailedDocuments int    `json:"failed_documents"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RuleFromType converts the domain rule to its API shape.
func RuleFromType(r types.Rule) Rule {
	return Rule{
		RuleNumber: r.RuleNumber,
		Text:       r.Text,
		Chapter:    r.Chapter,
		Section:    r.Section,
		Subsection: r.Subsection,
		Page:       r.Page,
		Source:     string(r.Source),
	}
}

// CitationFromType converts the domain citation to its API shape.
func CitationFromType(c types.Citation) Citation {
	return Citation{
		RuleNumber: c.RuleNumber,
		Text:       c.Text,
		Source:     string(c.Source),
		Page:       c.Page,
	}
}

// SearchResultFromType converts a domain search result to its API shape.
func SearchResultFromType(r types.SearchResult) SearchResult {
	return SearchResult{
		Rule:       RuleFromType(r.Rule),
		Score:      r.Score,
		Text:       r.Text,
		Categories: r.Categories,
	}
}
