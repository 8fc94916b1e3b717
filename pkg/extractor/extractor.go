package extractor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/openregulatory/regkb/pkg/types"
)

// ExtractionError wraps a document-level failure: an unreadable PDF or a
// crash during pattern matching. Batch ingestion isolates these per
// document; a standalone extraction call propagates them.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is implements errors.Is support for ExtractionError.
func (e *ExtractionError) Is(target error) bool {
	_, ok := target.(*ExtractionError)
	return ok
}

// Page is one page of raw document text.
type Page struct {
	Number int
	Text   string
}

// Stats counts candidate outcomes for one extraction run.
type Stats struct {
	// Accepted rules passed validation and deduplication.
	Accepted int
	// Invalid candidates failed validation.
	Invalid int
	// Duplicate candidates repeated an already-accepted rule number.
	Duplicate int
}

// Skipped is the total number of rejected candidates.
func (s Stats) Skipped() int { return s.Invalid + s.Duplicate }

// Add merges another run's counts into s.
func (s *Stats) Add(other Stats) {
	s.Accepted += other.Accepted
	s.Invalid += other.Invalid
	s.Duplicate += other.Duplicate
}

// Extractor segments raw document text into structured rules.
type Extractor struct {
	logger *slog.Logger
}

// New creates an extractor.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ProcessDocument extracts every rule from the PDF at path, selecting the
// built-in pattern set for the source corpus. Text extraction failure is
// fatal and returned as an ExtractionError.
func (e *Extractor) ProcessDocument(path string, source types.Source) ([]types.Rule, Stats, error) {
	pages, err := ExtractText(path)
	if err != nil {
		return nil, Stats{}, err
	}

	rules, stats := e.ExtractRules(pages, PatternsForSource(source), source)
	e.logger.Info("extracted rules",
		"path", path,
		"source", string(source),
		"accepted", stats.Accepted,
		"skipped", stats.Skipped())
	return rules, stats, nil
}

// ExtractRules applies each pattern to each page in order and collects
// validated rules. Output preserves match order: page, then pattern, then
// position within the page. Duplicate rule numbers are resolved
// first-wins: the earliest accepted occurrence stays, later ones count as
// duplicates.
func (e *Extractor) ExtractRules(pages []Page, patterns []Pattern, source types.Source) ([]types.Rule, Stats) {
	var rules []types.Rule
	var stats Stats
	seen := make(map[string]bool)

	for _, page := range pages {
		for _, pattern := range patterns {
			for _, candidate := range segment(page.Text, pattern) {
				rule := types.NewRule(candidate.number, candidate.body, page.Number, source)

				if err := rule.Validate(); err != nil {
					stats.Invalid++
					e.logger.Debug("skipped invalid rule candidate",
						"source", string(source),
						"rule_number", rule.RuleNumber,
						"reason", err.Error())
					continue
				}
				if seen[rule.RuleNumber] {
					stats.Duplicate++
					e.logger.Debug("skipped duplicate rule candidate",
						"source", string(source),
						"rule_number", rule.RuleNumber,
						"page", page.Number)
					continue
				}

				seen[rule.RuleNumber] = true
				rules = append(rules, rule)
				stats.Accepted++
			}
		}
	}

	return rules, stats
}

// candidate is one raw segmentation hit before validation.
type candidate struct {
	number string
	body   string
}

// segment finds every marker the pattern matches in text and slices the
// body between consecutive markers. The final body runs to the end of the
// text.
func segment(text string, pattern Pattern) []candidate {
	matches := pattern.Marker.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	candidates := make([]candidate, 0, len(matches))
	for i, m := range matches {
		// m[2], m[3] bound the captured rule number; m[1] ends the marker.
		number := text[m[2]:m[3]]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:bodyEnd])
		candidates = append(candidates, candidate{number: number, body: body})
	}
	return candidates
}
