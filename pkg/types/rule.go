package types

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors
var (
	ErrEmptyRuleNumber   = errors.New("rule_number cannot be empty")
	ErrEmptyRuleText     = errors.New("rule text cannot be empty")
	ErrInvalidRuleNumber = errors.New("rule_number must be a dotted numeric string")
	ErrRuleTextTooShort  = errors.New("rule text is too short")
)

// MinRuleTextLength is the minimum length of trimmed rule text for a rule
// to be considered valid.
const MinRuleTextLength = 10

// ruleNumberPattern matches dotted numeric rule numbers such as "3", "3.12"
// or "3.12.4".
var ruleNumberPattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// Source identifies the regulatory corpus a rule was extracted from.
type Source string

const (
	// SourceGFR is the General Financial Rules 2017 corpus.
	SourceGFR Source = "GFR 2017"
	// SourcePM is the Procurement Manual 2025 corpus.
	SourcePM Source = "PM 2025"
)

// SourceForFilename infers the source tag from a document filename.
// Filenames containing "GFR" map to the GFR corpus, everything else to
// the procurement manual. This is a two-corpus convention, not a general
// mapping.
func SourceForFilename(name string) Source {
	if strings.Contains(name, "GFR") {
		return SourceGFR
	}
	return SourcePM
}

// Rule is a single numbered provision extracted from a source document.
// Chapter, Section and Subsection are derived from RuleNumber by splitting
// on '.'; Subsection is empty when the number has fewer than three
// components.
type Rule struct {
	RuleNumber string `json:"rule_number"`
	Text       string `json:"text"`
	Chapter    string `json:"chapter"`
	Section    string `json:"section"`
	Subsection string `json:"subsection,omitempty"`
	Page       int    `json:"page"`
	Source     Source `json:"source"`
}

// NewRule builds a Rule from a raw rule number and body, deriving the
// chapter/section/subsection components and trimming the text. It does not
// validate; callers decide whether invalid candidates are dropped or
// counted.
func NewRule(ruleNumber, text string, page int, source Source) Rule {
	r := Rule{
		RuleNumber: ruleNumber,
		Text:       strings.TrimSpace(text),
		Page:       page,
		Source:     source,
	}
	parts := strings.Split(ruleNumber, ".")
	if len(parts) > 0 {
		r.Chapter = parts[0]
	}
	if len(parts) > 1 {
		r.Section = parts[1]
	}
	if len(parts) > 2 {
		r.Subsection = parts[2]
	}
	return r
}

// DisplayText is the string embedded into the vector space for a rule.
// The same format is used at index build time and must never change
// between builds of the same index.
func (r Rule) DisplayText() string {
	return fmt.Sprintf("%s: %s", r.RuleNumber, r.Text)
}

// Validate reports whether the rule may enter the index. A rule is
// rejected when either field is empty, when the rule number is not a
// dotted numeric string, or when the trimmed text is shorter than
// MinRuleTextLength. A validation failure is a normal filtering outcome,
// not a processing error.
func (r Rule) Validate() error {
	if r.RuleNumber == "" {
		return ErrEmptyRuleNumber
	}
	if r.Text == "" {
		return ErrEmptyRuleText
	}
	if !ruleNumberPattern.MatchString(r.RuleNumber) {
		return fmt.Errorf("%w: %q", ErrInvalidRuleNumber, r.RuleNumber)
	}
	if len(strings.TrimSpace(r.Text)) < MinRuleTextLength {
		return fmt.Errorf("%w: %d characters", ErrRuleTextTooShort, len(strings.TrimSpace(r.Text)))
	}
	return nil
}

// Valid is a convenience wrapper over Validate.
func (r Rule) Valid() bool {
	return r.Validate() == nil
}
