// Package config loads service configuration from file and environment
// variables via viper.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Documents configuration
	Documents DocumentsConfig `mapstructure:"documents"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Generation configuration
	Generation GenerationConfig `mapstructure:"generation"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// DocumentsConfig holds document processing configuration
type DocumentsConfig struct {
	// DataDir is where source PDFs live.
	DataDir string `mapstructure:"data_dir"`
	// IndexDir is where index artifacts are persisted.
	IndexDir string `mapstructure:"index_dir"`
	// PatternsFile optionally overrides the built-in rule patterns.
	PatternsFile string `mapstructure:"patterns_file"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"` // local, openai
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// GenerationConfig holds configuration for the conversational model
type GenerationConfig struct {
	Provider    string  `mapstructure:"provider"` // gemini, openai
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Documents defaults
	viper.SetDefault("documents.data_dir", "./data")
	viper.SetDefault("documents.index_dir", "./vector_store")
	viper.SetDefault("documents.patterns_file", "")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "local")
	viper.SetDefault("embedding.model", "all-MiniLM-L6-v2")

	// Generation defaults
	viper.SetDefault("generation.provider", "gemini")
	viper.SetDefault("generation.model", "gemini-2.0-flash")
	viper.SetDefault("generation.temperature", 0.7)
	viper.SetDefault("generation.max_tokens", 1024)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Generation.APIKey = apiKey
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if config.Generation.Provider == "openai" {
			config.Generation.APIKey = apiKey
		}
		if config.Embedding.Provider == "openai" {
			config.Embedding.APIKey = apiKey
		}
	}

	// Document locations
	if dir := os.Getenv("REGKB_DATA_DIR"); dir != "" {
		config.Documents.DataDir = dir
	}
	if dir := os.Getenv("REGKB_INDEX_DIR"); dir != "" {
		config.Documents.IndexDir = dir
	}
	if path := os.Getenv("REGKB_PATTERNS_FILE"); path != "" {
		config.Documents.PatternsFile = path
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
}
