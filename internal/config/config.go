package config

import (
	"os"
	"strconv"
	"time"

	"datadeck/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig
	Pipeline PipelineConfig
}

// DatabaseConfig holds database connection settings. An empty URL means the
// in-memory store is used.
type DatabaseConfig struct {
	URL string
}

// AIConfig holds the insight generator settings. Without an API key the
// deterministic heuristic generator is used.
type AIConfig struct {
	OpenAIKey   string
	OpenAIModel string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// PipelineConfig holds the processing thresholds
type PipelineConfig struct {
	SampleSize            int
	TypeThreshold         float64
	MaxCategories         int
	CompletenessThreshold float64
	ZScoreThreshold       float64
	PieMaxCategories      int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		AI: AIConfig{
			OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
			OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:     os.Getenv("OPENAI_BASE_URL"),
			MaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 512),
			Temperature: getEnvFloat("OPENAI_TEMPERATURE", 0.2),
			Timeout:     getEnvDuration("INSIGHT_TIMEOUT", 10*time.Second),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "5000"),
		},
		Pipeline: PipelineConfig{
			SampleSize:            getEnvInt("INFER_SAMPLE_SIZE", 200),
			TypeThreshold:         getEnvFloat("INFER_TYPE_THRESHOLD", 0.90),
			MaxCategories:         getEnvInt("INFER_MAX_CATEGORIES", 50),
			CompletenessThreshold: getEnvFloat("CLEAN_COMPLETENESS_THRESHOLD", 0.5),
			ZScoreThreshold:       getEnvFloat("CLEAN_ZSCORE_THRESHOLD", 3.0),
			PieMaxCategories:      getEnvInt("PIE_MAX_CATEGORIES", 8),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Pipeline.TypeThreshold <= 0 || c.Pipeline.TypeThreshold > 1 {
		return errors.ConfigInvalid("INFER_TYPE_THRESHOLD must be in (0, 1]")
	}
	if c.Pipeline.CompletenessThreshold < 0 || c.Pipeline.CompletenessThreshold > 1 {
		return errors.ConfigInvalid("CLEAN_COMPLETENESS_THRESHOLD must be in [0, 1]")
	}
	if c.Pipeline.ZScoreThreshold <= 0 {
		return errors.ConfigInvalid("CLEAN_ZSCORE_THRESHOLD must be positive")
	}
	if c.Pipeline.SampleSize < 1 {
		return errors.ConfigInvalid("INFER_SAMPLE_SIZE must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
