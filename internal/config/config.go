package config

import (
	"os"
	"strconv"
	"time"

	"heartdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Cache     CacheConfig
	Trend     TrendConfig
	Database  DatabaseConfig
	AI        AIConfig
	Profiling ProfilingConfig
	LogLevel  string
	Debug     bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port       string
	ReportPort string
	GinMode    string
}

// DataConfig holds dataset location and reload settings
type DataConfig struct {
	File  string
	Watch bool
}

// CacheConfig sizes the memoised filter cache
type CacheConfig struct {
	TTL     time.Duration
	MaxCost int64
}

// TrendConfig holds LOWESS and projection defaults
type TrendConfig struct {
	ProjectionYear int
	Frac           float64
	Iterations     int
	Window         int
}

// DatabaseConfig holds the optional saved-views database
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// AIConfig holds chatbot settings
type AIConfig struct {
	OpenAIKey      string
	Model          string
	EmbeddingModel string
	SystemContext  string
	MaxTokens      int
	TopK           int
}

// Enabled reports whether the chatbot can reach the LLM
func (a AIConfig) Enabled() bool {
	return a.OpenAIKey != ""
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Database:  DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		AI:        *loadAIConfig(),
		Profiling: *loadProfilingConfig(),
		LogLevel:  os.Getenv("LOG_LEVEL"),
		Debug:     getEnvBoolOrDefault("LOG_DEBUG", false),
	}

	cacheConfig, err := loadCacheConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cache configuration")
	}
	config.Cache = *cacheConfig

	config.Trend = *loadTrendConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:       getEnvOrDefault("PORT", "8050"),
		ReportPort: getEnvOrDefault("REPORT_PORT", "8051"),
		GinMode:    getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:  getEnvOrDefault("DATA_FILE", "data/heart_disease_data.csv"),
		Watch: getEnvBoolOrDefault("DATA_WATCH", false),
	}
}

func loadCacheConfig() (*CacheConfig, error) {
	ttl := getEnvDurationOrDefault("CACHE_TTL", 10*time.Minute)
	if ttl <= 0 {
		return nil, errors.ConfigInvalid("CACHE_TTL must be positive")
	}
	return &CacheConfig{
		TTL:     ttl,
		MaxCost: int64(getEnvIntOrDefault("CACHE_MAX_COST", 256)),
	}, nil
}

func loadTrendConfig() *TrendConfig {
	return &TrendConfig{
		ProjectionYear: getEnvIntOrDefault("PROJECTION_YEAR", 2030),
		Frac:           getEnvFloatOrDefault("LOWESS_FRAC", 2.0/3.0),
		Iterations:     getEnvIntOrDefault("LOWESS_ITERATIONS", 3),
		Window:         getEnvIntOrDefault("PROJECTION_WINDOW", 5),
	}
}

func loadAIConfig() *AIConfig {
	return &AIConfig{
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		Model:          getEnvOrDefault("LLM_MODEL", "gpt-4"),
		EmbeddingModel: getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-ada-002"),
		SystemContext:  "You answer questions about global heart disease statistics using only the provided data rows",
		MaxTokens:      getEnvIntOrDefault("MAX_TOKENS", 800),
		TopK:           getEnvIntOrDefault("CHAT_TOP_K", 4),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}
	if config.Trend.Frac <= 0 || config.Trend.Frac > 1 {
		return errors.ConfigInvalid("LOWESS_FRAC must be in (0, 1]")
	}
	if config.Trend.Iterations < 0 {
		return errors.ConfigInvalid("LOWESS_ITERATIONS cannot be negative")
	}
	if config.Trend.Window < 2 {
		return errors.ConfigInvalid("PROJECTION_WINDOW must be at least 2")
	}
	if config.Cache.MaxCost <= 0 {
		return errors.ConfigInvalid("CACHE_MAX_COST must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
