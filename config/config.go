package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	GitHubToken  string
	GeminiAPIKey string
	GeminiModel  string
	HTTPPort     int
	LogLevel     string
}

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

// Load loads configuration from environment variables
func (c *Config) Load() error {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Read .env file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// A fine-grained token is preferred; fall back to a classic one.
	c.GitHubToken = viper.GetString("GITHUB_FINE_GRAINED_TOKEN")
	if c.GitHubToken == "" {
		c.GitHubToken = viper.GetString("GITHUB_CLASSIC_TOKEN")
	}
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_FINE_GRAINED_TOKEN or GITHUB_CLASSIC_TOKEN is required")
	}

	// Optional: without a key the insight generator uses the
	// deterministic fallback path.
	c.GeminiAPIKey = viper.GetString("GEMINI_API_KEY")
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = viper.GetString("GEMINI_GEN_AI_KEY")
	}

	c.GeminiModel = viper.GetString("GEMINI_MODEL")
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-2.5-pro"
	}

	c.HTTPPort = viper.GetInt("HTTP_PORT")
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}

	c.LogLevel = viper.GetString("LOG_LEVEL")
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	return nil
}
