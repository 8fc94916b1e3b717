package regkb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/openregulatory/regkb/pkg/category"
	"github.com/openregulatory/regkb/pkg/embedder"
	"github.com/openregulatory/regkb/pkg/extractor"
	"github.com/openregulatory/regkb/pkg/index"
	"github.com/openregulatory/regkb/pkg/merge"
	"github.com/openregulatory/regkb/pkg/nlp"
	"github.com/openregulatory/regkb/pkg/types"
)

// Coordinator errors
var (
	// ErrNotReady indicates the index has not been built or loaded yet.
	ErrNotReady = errors.New("knowledge base is not ready; process documents first")

	// ErrRuleNotFound indicates no rule with the requested number exists.
	ErrRuleNotFound = errors.New("rule not found")
)

// State describes the lifecycle of the knowledge base.
type State string

const (
	// StateEmpty means no index has been built or loaded.
	StateEmpty State = "empty"
	// StateBuilding means document processing is in progress.
	StateBuilding State = "building"
	// StateReady means the index is queryable.
	StateReady State = "ready"
)

// DefaultChatTimeout bounds one generation call.
const DefaultChatTimeout = 60 * time.Second

// Options configures the knowledge base coordinator.
type Options struct {
	// DataDir is the directory holding source PDF documents.
	DataDir string
	// IndexDir is where index artifacts are persisted.
	IndexDir string
	// PatternsFile optionally overrides the built-in extraction patterns
	// with a YAML pattern set file.
	PatternsFile string
	// ChatTimeout bounds one generation call. Zero means DefaultChatTimeout.
	ChatTimeout time.Duration
	// MergePolicy selects citations from ranked results. Zero value means
	// merge.DefaultPolicy().
	MergePolicy merge.Policy
}

// KnowledgeBase coordinates extraction, indexing and retrieval over the
// regulatory corpora. It is safe for concurrent use; document processing
// is serialized while queries on a ready index proceed in parallel.
type KnowledgeBase struct {
	embedder  embedder.Client
	generator nlp.Client
	extractor *extractor.Extractor
	index     *index.Index
	logger    *slog.Logger
	opts      Options
	patterns  map[string][]extractor.Pattern

	mu        sync.Mutex
	state     State
	lastStats types.ProcessingStats
}

// New creates a knowledge base coordinator. The generator may be nil when
// only retrieval is needed; Chat then returns an error.
func New(embedderClient embedder.Client, generator nlp.Client, logger *slog.Logger, opts Options) (*KnowledgeBase, error) {
	if embedderClient == nil {
		return nil, fmt.Errorf("embedder client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ChatTimeout <= 0 {
		opts.ChatTimeout = DefaultChatTimeout
	}
	if opts.MergePolicy.PerSource == 0 {
		opts.MergePolicy = merge.DefaultPolicy()
	}

	kb := &KnowledgeBase{
		embedder:  embedderClient,
		generator: generator,
		extractor: extractor.New(logger),
		index:     index.New(embedderClient, logger),
		logger:    logger,
		opts:      opts,
		state:     StateEmpty,
	}

	if opts.PatternsFile != "" {
		sets, err := extractor.LoadPatternSets(opts.PatternsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load pattern sets: %w", err)
		}
		kb.patterns = sets
	}

	return kb, nil
}

// setState records a lifecycle transition with its trigger.
func (kb *KnowledgeBase) setState(next State) {
	prev := kb.state
	kb.state = next
	kb.logger.Info("knowledge base state change", "from", string(prev), "to", string(next))
}

// State returns the current lifecycle state.
func (kb *KnowledgeBase) State() State {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.state
}

// ProcessDocuments builds the index from the documents in DataDir. When
// persisted artifacts exist and force is false, they are loaded instead of
// rebuilding and the returned stats are zero. A document that cannot be
// extracted is logged and skipped; the run continues. The index is saved
// after every rebuild.
func (kb *KnowledgeBase) ProcessDocuments(ctx context.Context, force bool) (*types.ProcessingStats, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	start := time.Now()
	kb.setState(StateBuilding)

	if !force && index.ArtifactsExist(kb.opts.IndexDir) {
		if err := kb.index.Load(kb.opts.IndexDir); err != nil {
			if !errors.Is(err, index.ErrCorruptIndex) {
				kb.setState(StateEmpty)
				return nil, err
			}
			kb.logger.Warn("persisted index unusable, rebuilding", "error", err)
		} else {
			kb.setState(StateReady)
			kb.logger.Info("loaded persisted index",
				"rules", kb.index.Len(),
				"duration", time.Since(start))
			return &types.ProcessingStats{}, nil
		}
	}

	paths, err := kb.documentPaths()
	if err != nil {
		kb.setState(StateEmpty)
		return nil, err
	}

	stats := types.ProcessingStats{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			kb.setState(StateEmpty)
			return nil, err
		}

		source := types.SourceForFilename(filepath.Base(path))
		rules, extStats, err := kb.processOne(ctx, path, source)
		if err != nil {
			kb.logger.Error("failed to process document", "path", path, "error", err)
			stats.FailedDocuments++
			continue
		}

		// Revalidate before indexing; the extractor already filters but
		// custom pattern sets may slip malformed candidates through.
		valid := rules[:0]
		for _, rule := range rules {
			if err := rule.Validate(); err != nil {
				kb.logger.Debug("dropping invalid rule", "rule_number", rule.RuleNumber, "error", err)
				stats.Skipped++
				continue
			}
			valid = append(valid, rule)
		}

		if err := kb.index.Add(ctx, valid); err != nil {
			kb.logger.Error("failed to index document", "path", path, "error", err)
			stats.FailedDocuments++
			continue
		}

		stats.Processed += len(valid)
		stats.Skipped += extStats.Skipped()
		stats.Documents++
	}

	if err := kb.index.Save(kb.opts.IndexDir); err != nil {
		kb.setState(StateEmpty)
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}

	kb.lastStats = stats
	kb.setState(StateReady)
	kb.logger.Info("document processing complete",
		"documents", stats.Documents,
		"failed_documents", stats.FailedDocuments,
		"rules", stats.Processed,
		"skipped", stats.Skipped,
		"duration", time.Since(start))
	return &stats, nil
}

// processOne extracts rules from a single document, using custom pattern
// sets when configured.
func (kb *KnowledgeBase) processOne(ctx context.Context, path string, source types.Source) ([]types.Rule, extractor.Stats, error) {
	if kb.patterns != nil {
		key := "pm"
		if source == types.SourceGFR {
			key = "gfr"
		}
		if patterns, ok := kb.patterns[key]; ok {
			pages, err := extractor.ExtractText(path)
			if err != nil {
				return nil, extractor.Stats{}, err
			}
			rules, stats := kb.extractor.ExtractRules(pages, patterns, source)
			return rules, stats, nil
		}
	}
	return kb.extractor.ProcessDocument(path, source)
}

// documentPaths lists the PDF files under DataDir in name order.
func (kb *KnowledgeBase) documentPaths() ([]string, error) {
	entries, err := os.ReadDir(kb.opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(kb.opts.DataDir, entry.Name()))
		}
	}
	return paths, nil
}

// ensureReady returns ErrNotReady unless the index is queryable.
func (kb *KnowledgeBase) ensureReady() error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.state != StateReady {
		return ErrNotReady
	}
	return nil
}

// Search retrieves the k most similar rules to the query and annotates
// each result with its keyword categories.
func (kb *KnowledgeBase) Search(ctx context.Context, query string, k int) ([]types.SearchResult, error) {
	if err := kb.ensureReady(); err != nil {
		return nil, err
	}

	results, err := kb.index.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	for i := range results {
		results[i].Categories = category.Categorize(results[i].Rule.Text)
	}
	return results, nil
}

// Chat generates a conversational answer and attaches source-balanced
// citations retrieved for the same message. Generation failures propagate;
// the citations are never silently dropped into an empty answer.
func (kb *KnowledgeBase) Chat(ctx context.Context, message string, history []types.Message) (*types.ChatResult, error) {
	if kb.generator == nil {
		return nil, fmt.Errorf("no generation client configured")
	}
	if err := kb.ensureReady(); err != nil {
		return nil, err
	}

	results, err := kb.index.Search(ctx, message, merge.SearchK)
	if err != nil && !errors.Is(err, index.ErrEmptyIndex) {
		return nil, err
	}
	citations := kb.opts.MergePolicy.Citations(results)

	messages := make([]types.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, nlp.NewUserMessage(message))

	chatCtx, cancel := context.WithTimeout(ctx, kb.opts.ChatTimeout)
	defer cancel()

	resp, err := kb.generator.Chat(chatCtx, messages)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return &types.ChatResult{
		Response:  resp.Content,
		Citations: citations,
	}, nil
}

// GetRule returns the rule with the given number.
func (kb *KnowledgeBase) GetRule(ctx context.Context, ruleNumber string) (types.Rule, error) {
	if err := kb.ensureReady(); err != nil {
		return types.Rule{}, err
	}

	rule, ok := kb.index.RuleByNumber(ruleNumber)
	if !ok {
		return types.Rule{}, fmt.Errorf("%w: %q", ErrRuleNotFound, ruleNumber)
	}
	return rule, nil
}

// GetRulesByCategory returns all rules whose text matches the category's
// keyword set.
func (kb *KnowledgeBase) GetRulesByCategory(ctx context.Context, name string) ([]types.Rule, error) {
	if err := kb.ensureReady(); err != nil {
		return nil, err
	}
	if !category.Known(name) {
		return nil, fmt.Errorf("unknown category: %q", name)
	}
	return kb.index.RulesByCategory(name, category.Matches), nil
}

// GetStatistics summarizes the current index contents. Category counts are
// non-exclusive.
func (kb *KnowledgeBase) GetStatistics(ctx context.Context) (*types.Statistics, error) {
	if err := kb.ensureReady(); err != nil {
		return nil, err
	}

	kb.mu.Lock()
	lastStats := kb.lastStats
	kb.mu.Unlock()

	rules := kb.index.Rules()
	stats := &types.Statistics{
		TotalRules:      len(rules),
		ProcessedRules:  lastStats.Processed,
		RulesBySource:   make(map[types.Source]int),
		RulesByCategory: make(map[string]int),
		SkippedRules:    lastStats.Skipped,
	}
	for _, rule := range rules {
		stats.RulesBySource[rule.Source]++
		for _, name := range category.Categorize(rule.Text) {
			stats.RulesByCategory[name]++
		}
	}
	return stats, nil
}

// Close releases the embedding and generation clients.
func (kb *KnowledgeBase) Close() error {
	var errs []error
	if err := kb.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	if kb.generator != nil {
		if err := kb.generator.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
