package types

// SearchResult pairs a retrieved rule with its similarity score and the
// display text that was embedded at index build time. Results are returned
// by value in descending score order.
type SearchResult struct {
	Rule       Rule     `json:"rule"`
	Score      float64  `json:"score"`
	Text       string   `json:"text"`
	Categories []string `json:"categories,omitempty"`
}

// Citation is the caller-facing slice of a rule attached to a generated
// answer.
type Citation struct {
	RuleNumber string `json:"rule_number"`
	Text       string `json:"text"`
	Source     Source `json:"source"`
	Page       int    `json:"page"`
}

// CitationFromRule projects a rule into its citation form.
func CitationFromRule(r Rule) Citation {
	return Citation{
		RuleNumber: r.RuleNumber,
		Text:       r.Text,
		Source:     r.Source,
		Page:       r.Page,
	}
}

// ProcessingStats summarizes one ingestion run.
type ProcessingStats struct {
	// Processed is the number of valid rules added to the index.
	Processed int `json:"processed"`
	// Skipped is the number of candidates rejected by validation or
	// deduplication.
	Skipped int `json:"skipped"`
	// Documents is the number of documents successfully processed.
	Documents int `json:"documents"`
	// FailedDocuments is the number of documents that could not be
	// processed and were skipped.
	FailedDocuments int `json:"failed_documents"`
}

// Statistics describes the current contents of the knowledge base.
// Category counts are non-exclusive: a rule contributes to every category
// whose keyword set it matches.
type Statistics struct {
	TotalRules      int            `json:"total_rules"`
	ProcessedRules  int            `json:"processed_rules"`
	RulesBySource   map[Source]int `json:"rules_by_source"`
	RulesByCategory map[string]int `json:"rules_by_category"`
	SkippedRules    int            `json:"skipped_rules"`
}

// Message is one turn of a conversation passed through to the generation
// boundary.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResult carries the generated answer together with the independently
// retrieved, source-balanced citation set.
type ChatResult struct {
	Response  string     `json:"response"`
	Citations []Citation `json:"citations"`
}
