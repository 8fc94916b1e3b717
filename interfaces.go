package regkb

import (
	"context"

	"github.com/openregulatory/regkb/pkg/types"
)

// This file defines focused interfaces following the Interface Segregation
// Principle. Consumers should depend on the smallest interface that meets
// their needs; Service composes them for callers that want everything.

// DocumentProcessor builds the index from source documents.
type DocumentProcessor interface {
	// ProcessDocuments extracts rules from every PDF in the data
	// directory and indexes them. When persisted artifacts exist and
	// force is false they are loaded instead.
	ProcessDocuments(ctx context.Context, force bool) (*types.ProcessingStats, error)
}

// RuleSearcher provides similarity search over indexed rules.
type RuleSearcher interface {
	// Search returns the k most similar rules to the query in
	// descending score order, annotated with keyword categories.
	Search(ctx context.Context, query string, k int) ([]types.SearchResult, error)
}

// RuleReader provides direct lookups on the indexed rules.
type RuleReader interface {
	// GetRule returns the rule with the given number.
	GetRule(ctx context.Context, ruleNumber string) (types.Rule, error)

	// GetRulesByCategory returns all rules matching a keyword category.
	GetRulesByCategory(ctx context.Context, name string) ([]types.Rule, error)

	// GetStatistics summarizes the current index contents.
	GetStatistics(ctx context.Context) (*types.Statistics, error)
}

// Chatter answers questions conversationally with attached citations.
type Chatter interface {
	// Chat generates an answer to the message and attaches
	// source-balanced citations retrieved for it.
	Chat(ctx context.Context, message string, history []types.Message) (*types.ChatResult, error)
}

// Service is the full knowledge base surface.
type Service interface {
	DocumentProcessor
	RuleSearcher
	RuleReader
	Chatter

	// State reports the current lifecycle state.
	State() State

	// Close releases underlying clients.
	Close() error
}

// Compile-time check that KnowledgeBase implements the full surface.
var _ Service = (*KnowledgeBase)(nil)
