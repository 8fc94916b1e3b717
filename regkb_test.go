package regkb_test

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openregulatory/regkb"
	"github.com/openregulatory/regkb/pkg/index"
	"github.com/openregulatory/regkb/pkg/nlp"
	"github.com/openregulatory/regkb/pkg/types"
)

// hashEmbedder produces deterministic vectors so persisted and rebuilt
// indexes agree without network access.
type hashEmbedder struct{ dims int }

func newHashEmbedder() *hashEmbedder { return &hashEmbedder{dims: 8} }

func (h *hashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = h.vector(text)
	}
	return vectors, nil
}

func (h *hashEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	return h.vector(text), nil
}

func (h *hashEmbedder) Dimensions() int { return h.dims }
func (h *hashEmbedder) Close() error    { return nil }

func (h *hashEmbedder) vector(text string) []float32 {
	hash := fnv.New64a()
	hash.Write([]byte(text))
	state := hash.Sum64()

	vec := make([]float32, h.dims)
	for i := range vec {
		state = state*6364136223846793005 + 1442695040888963407
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], state)
		vec[i] = float32(int8(buf[0])) / 128
	}
	return vec
}

// staticGenerator returns a fixed answer.
type staticGenerator struct {
	response string
	calls    int
}

func (s *staticGenerator) Chat(_ context.Context, messages []types.Message) (*nlp.Response, error) {
	s.calls++
	return &nlp.Response{Content: s.response}, nil
}

func (s *staticGenerator) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func corpusRules() []types.Rule {
	return []types.Rule{
		types.NewRule("1.1", "All payment for goods must follow the approved budget allocation.", 3, types.SourceGFR),
		types.NewRule("2.4", "Expenditure above the sanctioned limit requires prior approval.", 7, types.SourceGFR),
		types.NewRule("3.12", "Audit objections must be resolved before fund release.", 12, types.SourceGFR),
		types.NewRule("5.1.2", "Tender documents must state the bid evaluation procedure.", 21, types.SourcePM),
		types.NewRule("6.2.1", "Vendor contracts require delegation of purchase authority.", 30, types.SourcePM),
	}
}

// seedIndex persists a prebuilt index into dir using the same embedder the
// coordinator under test will use.
func seedIndex(t *testing.T, emb *hashEmbedder, dir string) {
	t.Helper()
	idx := index.New(emb, testLogger())
	require.NoError(t, idx.Add(context.Background(), corpusRules()))
	require.NoError(t, idx.Save(dir))
}

func newTestKB(t *testing.T, emb *hashEmbedder, gen nlp.Client, seeded bool) *regkb.KnowledgeBase {
	t.Helper()
	dataDir := t.TempDir()
	indexDir := t.TempDir()
	if seeded {
		seedIndex(t, emb, indexDir)
	}

	kb, err := regkb.New(emb, gen, testLogger(), regkb.Options{
		DataDir:  dataDir,
		IndexDir: indexDir,
	})
	require.NoError(t, err)
	return kb
}

func TestNewRequiresEmbedder(t *testing.T) {
	_, err := regkb.New(nil, nil, testLogger(), regkb.Options{})
	assert.Error(t, err)
}

func TestQueriesBeforeProcessingFail(t *testing.T) {
	kb := newTestKB(t, newHashEmbedder(), nil, false)
	ctx := context.Background()

	assert.Equal(t, regkb.StateEmpty, kb.State())

	_, err := kb.Search(ctx, "payments", 3)
	assert.ErrorIs(t, err, regkb.ErrNotReady)

	_, err = kb.GetRule(ctx, "1.1")
	assert.ErrorIs(t, err, regkb.ErrNotReady)

	_, err = kb.GetStatistics(ctx)
	assert.ErrorIs(t, err, regkb.ErrNotReady)
}

func TestProcessDocumentsLoadsPersistedIndex(t *testing.T) {
	emb := newHashEmbedder()
	kb := newTestKB(t, emb, nil, true)
	ctx := context.Background()

	stats, err := kb.ProcessDocuments(ctx, false)
	require.NoError(t, err)

	// A load, not a rebuild: nothing changes.
	assert.Equal(t, types.ProcessingStats{}, *stats)
	assert.Equal(t, regkb.StateReady, kb.State())

	rule, err := kb.GetRule(ctx, "3.12")
	require.NoError(t, err)
	assert.Equal(t, types.SourceGFR, rule.Source)
}

func TestProcessDocumentsEmptyDataDir(t *testing.T) {
	kb := newTestKB(t, newHashEmbedder(), nil, false)

	stats, err := kb.ProcessDocuments(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Documents)
	assert.Equal(t, regkb.StateReady, kb.State())
}

func TestProcessDocumentsIdempotent(t *testing.T) {
	emb := newHashEmbedder()
	kb := newTestKB(t, emb, nil, true)
	ctx := context.Background()

	_, err := kb.ProcessDocuments(ctx, false)
	require.NoError(t, err)

	// Second run finds the saved artifacts and loads again.
	stats, err := kb.ProcessDocuments(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, types.ProcessingStats{}, *stats)
}

func TestSearchAnnotatesCategories(t *testing.T) {
	emb := newHashEmbedder()
	kb := newTestKB(t, emb, nil, true)
	ctx := context.Background()

	_, err := kb.ProcessDocuments(ctx, false)
	require.NoError(t, err)

	results, err := kb.Search(ctx, "1.1: All payment for goods must follow the approved budget allocation.", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Deterministic embedder: the query text equals the display text of
	// rule 1.1, so it ranks first.
	assert.Equal(t, "1.1", results[0].Rule.RuleNumber)
	assert.Contains(t, results[0].Categories, "financial")
}

func TestGetRuleNotFound(t *testing.T) {
	kb := newTestKB(t, newHashEmbedder(), nil, true)
	ctx := context.Background()

	_, err := kb.ProcessDocuments(ctx, false)
	require.NoError(t, err)

	_, err = kb.GetRule(ctx, "404.404")
	assert.ErrorIs(t, err, regkb.ErrRuleNotFound)
}

func TestGetRulesByCategory(t *testing.T) {
	kb := newTestKB(t, newHashEmbedder(), nil, true)
	ctx := context.Background()

	_, err := kb.ProcessDocuments(ctx, false)
	require.NoError(t, err)

	rules, err := kb.GetRulesByCategory(ctx, "procurement")
	require.NoError(t, err)
	numbers := make([]string, 0, len(rules))
	for _, r := range rules {
		numbers = append(numbers, r.RuleNumber)
	}
	assert.ElementsMatch(t, []string{"5.1.2", "6.2.1"}, numbers)

	_, err = kb.GetRulesByCategory(ctx, "astrology")
	assert.Error(t, err)
}

func TestGetStatistics(t *testing.T) {
	kb := newTestKB(t, newHashEmbedder(), nil, true)
	ctx := context.Background()

	_, err := kb.ProcessDocuments(ctx, false)
	require.NoError(t, err)

	stats, err := kb.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalRules)
	assert.Equal(t, 3, stats.RulesBySource[types.SourceGFR])
	assert.Equal(t, 2, stats.RulesBySource[types.SourcePM])
	assert.Positive(t, stats.RulesByCategory["financial"])
}

func TestChatAttachesBalancedCitations(t *testing.T) {
	emb := newHashEmbedder()
	gen := &staticGenerator{response: "Rule 1.1 governs payments."}
	kb := newTestKB(t, emb, gen, true)
	ctx := context.Background()

	_, err := kb.ProcessDocuments(ctx, false)
	require.NoError(t, err)

	result, err := kb.Chat(ctx, "what governs payments?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Rule 1.1 governs payments.", result.Response)
	assert.Equal(t, 1, gen.calls)

	// Five indexed rules over two sources: at most two citations per
	// source, GFR first.
	require.NotEmpty(t, result.Citations)
	assert.LessOrEqual(t, len(result.Citations), 4)
	bySource := make(map[types.Source]int)
	for _, c := range result.Citations {
		bySource[c.Source]++
	}
	for source, count := range bySource {
		assert.LessOrEqual(t, count, 2, source)
	}
}

func TestChatWithoutGenerator(t *testing.T) {
	kb := newTestKB(t, newHashEmbedder(), nil, true)
	ctx := context.Background()

	_, err := kb.ProcessDocuments(ctx, false)
	require.NoError(t, err)

	_, err = kb.Chat(ctx, "anything", nil)
	assert.Error(t, err)
}

func TestChatNotReady(t *testing.T) {
	gen := &staticGenerator{response: "unused"}
	kb := newTestKB(t, newHashEmbedder(), gen, true)

	_, err := kb.Chat(context.Background(), "anything", nil)
	assert.ErrorIs(t, err, regkb.ErrNotReady)
	assert.Zero(t, gen.calls)
}
