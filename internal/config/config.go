// ABOUTME: Centralized configuration for the Clara chat front-end
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Log sink kinds
const (
	SinkJSONL  = "jsonl"
	SinkSQLite = "sqlite"
	SinkCharm  = "charm"
	SinkNone   = "none"
)

// DefaultLogPath is the JSONL log file written when CLARA_LOG_PATH is unset
const DefaultLogPath = "eval_logs.jsonl"

// ErrMissingAPIKey is wrapped by ConfigError when no credential is configured
var ErrMissingAPIKey = errors.New("no API key set (CLARA_API_KEY, GOOGLE_API_KEY or OPENAI_API_KEY)")

// ConfigError reports a missing or invalid setting. It is fatal at startup.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds all configuration for Clara
type Config struct {
	// Remote model settings
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration

	// Session settings
	HistoryWindow int
	StyleReplies  bool

	// Interaction log settings
	LogSink     string
	LogPath     string
	CharmHost   string
	CharmDBName string

	LogLevel string
}

// Load reads configuration from environment variables. A value that does not
// parse is a ConfigError, never a silent fallback to the default.
func Load() (*Config, error) {
	var env envParser
	cfg := &Config{
		// Defaults
		APIKey:        firstEnv("CLARA_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY"),
		BaseURL:       getEnv("CLARA_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		Model:         getEnv("CLARA_MODEL", "gemini-1.5-flash"),
		Temperature:   env.floatVal("CLARA_TEMPERATURE", 0.5),
		TopP:          env.floatVal("CLARA_TOP_P", 0),
		MaxTokens:     env.intVal("CLARA_MAX_TOKENS", 0),
		Timeout:       env.durationVal("CLARA_TIMEOUT", 30*time.Second),
		HistoryWindow: env.intVal("CLARA_HISTORY_WINDOW", 20),
		StyleReplies:  getEnvBool("CLARA_STYLE", true),
		LogSink:       strings.ToLower(getEnv("CLARA_LOG_SINK", SinkJSONL)),
		LogPath:       getEnv("CLARA_LOG_PATH", DefaultLogPath),
		CharmHost:     getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:   getEnv("CHARM_DB", "clara"),
		LogLevel:      strings.ToLower(getEnv("CLARA_LOG_LEVEL", "info")),
	}

	if env.err != nil {
		return cfg, env.err
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and the required credential
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{Key: "CLARA_API_KEY", Err: ErrMissingAPIKey}
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return &ConfigError{Key: "CLARA_TEMPERATURE", Err: fmt.Errorf("must be 0-1, got %f", c.Temperature)}
	}
	if c.TopP < 0 || c.TopP > 1 {
		return &ConfigError{Key: "CLARA_TOP_P", Err: fmt.Errorf("must be 0-1, got %f", c.TopP)}
	}
	if c.MaxTokens < 0 {
		return &ConfigError{Key: "CLARA_MAX_TOKENS", Err: fmt.Errorf("must be >= 0, got %d", c.MaxTokens)}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Key: "CLARA_TIMEOUT", Err: fmt.Errorf("must be positive, got %v", c.Timeout)}
	}
	if c.HistoryWindow <= 0 {
		return &ConfigError{Key: "CLARA_HISTORY_WINDOW", Err: fmt.Errorf("must be positive, got %d", c.HistoryWindow)}
	}
	switch c.LogSink {
	case SinkJSONL, SinkSQLite, SinkCharm, SinkNone:
	default:
		return &ConfigError{Key: "CLARA_LOG_SINK", Err: fmt.Errorf("unknown sink %q", c.LogSink)}
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func getEnvBool(key string, defaultVal bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1" || v == "on"
}

// envParser reads typed values and keeps the first parse failure
type envParser struct {
	err error
}

func (p *envParser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = &ConfigError{Key: key, Err: fmt.Errorf("cannot parse %q: %w", value, err)}
	}
}

func (p *envParser) intVal(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return defaultVal
	}
	return i
}

func (p *envParser) floatVal(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return defaultVal
	}
	return f
}

func (p *envParser) durationVal(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return defaultVal
	}
	return d
}
