package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the job process.
// Job parameters (seed, window, version) live in the YAML file read by
// internal/jobconfig; this struct only covers how the process itself behaves.
type Config struct {
	Env string // development, staging, production

	// Logging
	LogLevel  string
	LogFormat string // json, console
}

// Load reads runtime configuration from environment variables.
// Only this function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the settings used when the environment is not consulted.
func Default() *Config {
	return &Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Validate checks if configuration values are usable.
// Load calls it; callers that override fields afterwards call it again.
func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "console", "pretty":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	return nil
}

// loadEnvFile tries to load .env from the working directory or next to the executable
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
