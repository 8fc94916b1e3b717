package regkb

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/openregulatory/regkb"
	"github.com/openregulatory/regkb/pkg/config"
	"github.com/openregulatory/regkb/pkg/embedder"
	"github.com/openregulatory/regkb/pkg/logger"
	"github.com/openregulatory/regkb/pkg/nlp"
)

// buildLogger constructs the process logger from config.
func buildLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Log.Level, cfg.Log.Format)
}

// buildEmbedder constructs the embedding client from config.
func buildEmbedder(cfg *config.Config) (embedder.Client, error) {
	embedderConfig := embedder.Config{
		Model:   cfg.Embedding.Model,
		BaseURL: cfg.Embedding.BaseURL,
	}

	var client embedder.Client
	switch cfg.Embedding.Provider {
	case "local", "":
		local, err := embedder.NewLocalEmbedder(embedderConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create local embedder: %w", err)
		}
		client = local
	case "openai":
		client = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embedderConfig)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Embedding.Provider)
	}

	return embedder.NewRetryClient(client, embedder.DefaultRetryConfig()), nil
}

// buildGenerator constructs the generation client from config, wrapped with
// retry and, when enabled, a circuit breaker.
func buildGenerator(cfg *config.Config, log *slog.Logger) (nlp.Client, error) {
	temperature := cfg.Generation.Temperature
	maxTokens := cfg.Generation.MaxTokens

	client, err := nlp.NewClient(cfg.Generation.Provider, nlp.Config{
		Model:       cfg.Generation.Model,
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, err
	}

	var wrapped nlp.Client = nlp.NewRetryClient(client, nlp.DefaultRetryConfig())
	if cfg.CircuitBreaker.Enabled {
		wrapped = nlp.NewCircuitBreakerClient(wrapped, nlp.BreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, log, "generation")
	}
	return wrapped, nil
}

// buildKnowledgeBase wires the full coordinator. withGenerator controls
// whether a generation client is constructed; retrieval-only commands skip
// it.
func buildKnowledgeBase(cfg *config.Config, log *slog.Logger, withGenerator bool) (*regkb.KnowledgeBase, error) {
	embedderClient, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	var generator nlp.Client
	if withGenerator {
		generator, err = buildGenerator(cfg, log)
		if err != nil {
			return nil, err
		}
	}

	return regkb.New(embedderClient, generator, log, regkb.Options{
		DataDir:      cfg.Documents.DataDir,
		IndexDir:     cfg.Documents.IndexDir,
		PatternsFile: cfg.Documents.PatternsFile,
	})
}
