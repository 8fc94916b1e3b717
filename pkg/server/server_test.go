package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openregulatory/regkb"
	"github.com/openregulatory/regkb/pkg/config"
	"github.com/openregulatory/regkb/pkg/server/dto"
	"github.com/openregulatory/regkb/pkg/types"
)

// stubService is a canned regkb.Service for handler tests.
type stubService struct {
	state     regkb.State
	lastForce bool
}

func (s *stubService) ProcessDocuments(_ context.Context, force bool) (*types.ProcessingStats, error) {
	s.lastForce = force
	s.state = regkb.StateReady
	return &types.ProcessingStats{Processed: 12, Skipped: 3, Documents: 2}, nil
}

func (s *stubService) Search(_ context.Context, query string, k int) ([]types.SearchResult, error) {
	if s.state != regkb.StateReady {
		return nil, regkb.ErrNotReady
	}
	rule := types.NewRule("1.1", "All payment must follow the budget.", 3, types.SourceGFR)
	return []types.SearchResult{{
		Rule:       rule,
		Score:      0.91,
		Text:       rule.DisplayText(),
		Categories: []string{"financial"},
	}}, nil
}

func (s *stubService) GetRule(_ context.Context, ruleNumber string) (types.Rule, error) {
	if s.state != regkb.StateReady {
		return types.Rule{}, regkb.ErrNotReady
	}
	if ruleNumber != "1.1" {
		return types.Rule{}, fmt.Errorf("%w: %q", regkb.ErrRuleNotFound, ruleNumber)
	}
	return types.NewRule("1.1", "All payment must follow the budget.", 3, types.SourceGFR), nil
}

func (s *stubService) GetRulesByCategory(_ context.Context, name string) ([]types.Rule, error) {
	if s.state != regkb.StateReady {
		return nil, regkb.ErrNotReady
	}
	if name != "financial" {
		return nil, fmt.Errorf("unknown category: %q", name)
	}
	return []types.Rule{types.NewRule("1.1", "All payment must follow the budget.", 3, types.SourceGFR)}, nil
}

func (s *stubService) GetStatistics(_ context.Context) (*types.Statistics, error) {
	if s.state != regkb.StateReady {
		return nil, regkb.ErrNotReady
	}
	return &types.Statistics{
		TotalRules:      5,
		ProcessedRules:  5,
		RulesBySource:   map[types.Source]int{types.SourceGFR: 3, types.SourcePM: 2},
		RulesByCategory: map[string]int{"financial": 2},
		SkippedRules:    1,
	}, nil
}

func (s *stubService) Chat(_ context.Context, message string, _ []types.Message) (*types.ChatResult, error) {
	if s.state != regkb.StateReady {
		return nil, regkb.ErrNotReady
	}
	return &types.ChatResult{
		Response: "Rule 1.1 governs payments.",
		Citations: []types.Citation{
			{RuleNumber: "1.1", Text: "All payment must follow the budget.", Source: types.SourceGFR, Page: 3},
		},
	}, nil
}

func (s *stubService) State() regkb.State { return s.state }
func (s *stubService) Close() error       { return nil }

func newTestServer(t *testing.T, state regkb.State) (*Server, *stubService) {
	t.Helper()
	stub := &stubService{state: state}
	srv := New(&config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, Mode: "test"},
	}, stub, nil)
	srv.Setup()
	return srv, stub
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateEmpty)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "regkb", body["service"])
}

func TestReadyEndpointTracksState(t *testing.T) {
	srv, stub := newTestServer(t, regkb.StateEmpty)

	w := doJSON(t, srv, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	stub.state = regkb.StateReady
	w = doJSON(t, srv, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateReady)

	w := doJSON(t, srv, http.MethodPost, "/chat", dto.ChatRequest{
		Message: "what governs payments?",
		History: []dto.Message{{Role: "user", Content: "hello"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Rule 1.1 governs payments.", resp.Response)
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, "1.1", resp.Citations[0].RuleNumber)
	assert.Equal(t, "GFR 2017", resp.Citations[0].Source)
}

func TestChatEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateReady)

	w := doJSON(t, srv, http.MethodPost, "/chat", map[string]any{"history": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/chat", dto.ChatRequest{
		Message: "hi",
		History: []dto.Message{{Role: "wizard", Content: "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpointNotReady(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateEmpty)

	w := doJSON(t, srv, http.MethodPost, "/chat", dto.ChatRequest{Message: "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateReady)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/search", dto.SearchRequest{Query: "payments"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "1.1", resp.Results[0].Rule.RuleNumber)
	assert.Contains(t, resp.Results[0].Categories, "financial")
}

func TestSearchEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateReady)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/search", map[string]string{"query": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRuleEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateReady)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/rules/1.1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rule dto.Rule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
	assert.Equal(t, "1.1", rule.RuleNumber)
	assert.Equal(t, "1", rule.Chapter)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/rules/404.1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoriesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateReady)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/categories/financial", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.RulesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "financial", resp.Category)
	assert.Len(t, resp.Rules, 1)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/categories/astrology", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateReady)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.StatisticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.TotalRules)
	assert.Equal(t, 3, resp.RulesBySource["GFR 2017"])
	assert.Equal(t, 1, resp.SkippedRules)
}

func TestProcessDocumentsEndpoint(t *testing.T) {
	srv, stub := newTestServer(t, regkb.StateEmpty)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/process-documents?force=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, stub.lastForce)

	var resp dto.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "complete", resp.Status)
	assert.Equal(t, 12, resp.Processed)
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t, regkb.StateEmpty)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
}
