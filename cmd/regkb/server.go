package regkb

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openregulatory/regkb/pkg/config"
	"github.com/openregulatory/regkb/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the regkb HTTP server",
	Long: `Start the regkb HTTP server providing REST access to the knowledge base.

The server exposes endpoints for:
- Conversational answers with citations (POST /chat)
- Similarity search over rules (POST /api/v1/search)
- Rule and category lookups
- Index statistics and document processing
- Health and readiness checks

On startup the persisted index is loaded when present; otherwise the data
directory is processed to build it.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Generation flags
	serverCmd.Flags().String("generation-provider", "gemini", "Generation provider (gemini, openai)")
	serverCmd.Flags().String("generation-model", "", "Generation model")
	serverCmd.Flags().String("generation-api-key", "", "Generation API key")
	serverCmd.Flags().String("generation-base-url", "", "Generation base URL")

	// Embedding flags
	serverCmd.Flags().String("embedding-provider", "local", "Embedding provider (local, openai)")
	serverCmd.Flags().String("embedding-model", "", "Embedding model")
	serverCmd.Flags().String("embedding-api-key", "", "Embedding API key")
	serverCmd.Flags().String("embedding-base-url", "", "Embedding base URL")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)

	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := buildLogger(cfg)
	kb, err := buildKnowledgeBase(cfg, log, true)
	if err != nil {
		return fmt.Errorf("failed to initialize knowledge base: %w", err)
	}
	defer kb.Close()

	// Build or load the index before accepting traffic.
	if _, err := kb.ProcessDocuments(cmd.Context(), false); err != nil {
		return fmt.Errorf("failed to prepare index: %w", err)
	}

	srv := server.New(cfg, kb, log)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	if cmd.Flags().Changed("generation-provider") {
		cfg.Generation.Provider, _ = cmd.Flags().GetString("generation-provider")
	}
	if cmd.Flags().Changed("generation-model") {
		cfg.Generation.Model, _ = cmd.Flags().GetString("generation-model")
	}
	if cmd.Flags().Changed("generation-api-key") {
		cfg.Generation.APIKey, _ = cmd.Flags().GetString("generation-api-key")
	}
	if cmd.Flags().Changed("generation-base-url") {
		cfg.Generation.BaseURL, _ = cmd.Flags().GetString("generation-base-url")
	}

	if cmd.Flags().Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = cmd.Flags().GetString("embedding-provider")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}
	if cmd.Flags().Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = cmd.Flags().GetString("embedding-base-url")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Documents.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if cfg.Documents.IndexDir == "" {
		return fmt.Errorf("index directory is required")
	}
	return nil
}
