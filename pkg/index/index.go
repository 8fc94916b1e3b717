package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/openregulatory/regkb/pkg/embedder"
	"github.com/openregulatory/regkb/pkg/types"
	"github.com/openregulatory/regkb/pkg/vectorutil"
)

var (
	// ErrEmptyIndex is returned when searching an index with no rules.
	ErrEmptyIndex = errors.New("index is empty")
	// ErrDimensionMismatch is returned when an embedding batch disagrees
	// with the dimension fixed at index creation. Fatal to the Add call.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrCorruptIndex is returned when persisted artifacts are missing,
	// mismatched or unreadable.
	ErrCorruptIndex = errors.New("corrupt index artifacts")
)

// Index is an exact (flat) L2 nearest-neighbor index over rule
// embeddings. The vector at row i always corresponds to rules[i] and
// texts[i].
type Index struct {
	mu       sync.RWMutex
	embedder embedder.Client
	logger   *slog.Logger

	// dim is fixed by the first added batch; zero until then.
	dim     int
	vectors [][]float32
	rules   []types.Rule
	texts   []string
}

// New creates an empty index bound to one embedding client. The same
// client embeds rules at build time and queries at search time; swapping
// it invalidates every stored vector.
func New(embedderClient embedder.Client, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		embedder: embedderClient,
		logger:   logger,
	}
}

// Add embeds the display text of each rule and appends the resulting rows
// to the index, preserving input order. The vector dimension is fixed by
// the first batch; later batches with a different width fail with
// ErrDimensionMismatch and leave the index unchanged.
func (idx *Index) Add(ctx context.Context, rules []types.Rule) error {
	if len(rules) == 0 {
		return nil
	}

	texts := make([]string, len(rules))
	for i, rule := range rules {
		texts[i] = rule.DisplayText()
	}

	embeddings, err := idx.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding rules: %w", err)
	}
	if len(embeddings) != len(rules) {
		return fmt.Errorf("embedding rules: got %d vectors for %d rules", len(embeddings), len(rules))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	dim := idx.dim
	if dim == 0 {
		dim = len(embeddings[0])
		if dim == 0 {
			return fmt.Errorf("%w: provider returned zero-width vectors", ErrDimensionMismatch)
		}
	}
	for i, vec := range embeddings {
		if len(vec) != dim {
			return fmt.Errorf("%w: row %d has width %d, index has %d", ErrDimensionMismatch, i, len(vec), dim)
		}
	}

	idx.dim = dim
	idx.vectors = append(idx.vectors, embeddings...)
	idx.rules = append(idx.rules, rules...)
	idx.texts = append(idx.texts, texts...)

	idx.logger.Info("added rules to index", "count", len(rules), "total", len(idx.rules))
	return nil
}

// Search embeds the query with the build-time embedding client and
// returns up to k results in descending score order. The score is
// 1/(1+d) for L2 distance d, bounded in (0, 1]. When k exceeds the
// number of stored rules, all rules are returned.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]types.SearchResult, error) {
	queryVec, err := idx.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.rules) == 0 {
		return nil, ErrEmptyIndex
	}

	neighbors := vectorutil.NearestK(queryVec, idx.vectors, k)

	results := make([]types.SearchResult, 0, len(neighbors))
	for _, n := range neighbors {
		// Defensive bound check: any position outside the rule range is
		// silently dropped.
		if n.Index < 0 || n.Index >= len(idx.rules) {
			continue
		}
		results = append(results, types.SearchResult{
			Rule:  idx.rules[n.Index],
			Score: 1 / (1 + n.Distance),
			Text:  idx.texts[n.Index],
		})
	}
	return results, nil
}

// RuleByNumber scans for the first rule with the given number.
func (idx *Index) RuleByNumber(ruleNumber string) (types.Rule, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for _, rule := range idx.rules {
		if rule.RuleNumber == ruleNumber {
			return rule, true
		}
	}
	return types.Rule{}, false
}

// RulesByCategory scans for rules matched by the injected category
// matcher. The matcher is a stateless collaborator, never constructed
// here.
func (idx *Index) RulesByCategory(category string, matches func(text, category string) bool) []types.Rule {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []types.Rule
	for _, rule := range idx.rules {
		if matches(rule.Text, category) {
			out = append(out, rule)
		}
	}
	return out
}

// Rules returns a copy of the stored rule sequence in insertion order.
func (idx *Index) Rules() []types.Rule {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]types.Rule, len(idx.rules))
	copy(out, idx.rules)
	return out
}

// Len returns the number of indexed rules.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.rules)
}

// Dimensions returns the fixed vector width, or zero before the first
// Add.
func (idx *Index) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dim
}
