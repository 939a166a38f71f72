// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Passwords   string   `envconfig:"APP_PASSWORDS"`
	StaticDir   string   `envconfig:"STATIC_DIR"`
	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	DBPath      string   `envconfig:"DB_PATH" default:"./data/chatgate.db"`

	Provider        ProviderConfig
	Session         SessionConfig
	Persona         PersonaConfig
	ConversationLog ConversationLogConfig
}

// ProviderConfig configures the chat completion provider.
type ProviderConfig struct {
	APIKey    string        `envconfig:"GROQ_API_KEY"`
	BaseURL   string        `envconfig:"PROVIDER_BASE_URL" default:"https://api.groq.com/openai/v1"`
	Model     string        `envconfig:"PROVIDER_MODEL" default:"llama-3.1-8b-instant"`
	MaxTokens int           `envconfig:"PROVIDER_MAX_TOKENS" default:"300"`
	Timeout   time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"30s"`
}

// SessionConfig controls per-session quota, turn queueing and idle eviction.
// An evicted session loses its history and count, so its quota resets.
type SessionConfig struct {
	MessageLimit  int           `envconfig:"MESSAGE_LIMIT" default:"5"`
	QueueTimeout  time.Duration `envconfig:"SESSION_QUEUE_TIMEOUT" default:"10s"`
	TTL           time.Duration `envconfig:"SESSION_TTL" default:"24h"` // 0 disables eviction
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"5m"`
}

// PersonaConfig shapes the system instruction every new session starts with.
type PersonaConfig struct {
	Topic   string `envconfig:"SUPPORT_TOPIC" default:"customer support"`
	Contact string `envconfig:"SUPPORT_CONTACT" default:"support@example.com"`
	Prompt  string `envconfig:"SYSTEM_PROMPT"`
}

// ConversationLogConfig controls the SQLite conversation archive.
type ConversationLogConfig struct {
	Enabled   bool          `envconfig:"CONVERSATION_LOG_ENABLED" default:"true"`
	QueueSize int           `envconfig:"CONVERSATION_LOG_QUEUE_SIZE" default:"1000"`
	Retention time.Duration `envconfig:"CONVERSATION_LOG_RETENTION" default:"720h"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if len(c.PasswordList()) == 0 {
		return fmt.Errorf("APP_PASSWORDS must contain at least one password")
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY cannot be empty")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("PROVIDER_BASE_URL cannot be empty")
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("PROVIDER_MODEL cannot be empty")
	}
	if c.Provider.MaxTokens <= 0 {
		return fmt.Errorf("PROVIDER_MAX_TOKENS must be > 0")
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be > 0")
	}
	if c.Session.MessageLimit <= 0 {
		return fmt.Errorf("MESSAGE_LIMIT must be > 0")
	}
	if c.Session.QueueTimeout <= 0 {
		return fmt.Errorf("SESSION_QUEUE_TIMEOUT must be > 0")
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("SESSION_TTL cannot be negative")
	}
	if c.Session.TTL > 0 && c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be > 0 when SESSION_TTL is set")
	}
	if c.ConversationLog.Enabled {
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
		if c.ConversationLog.QueueSize <= 0 {
			return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
		}
		if c.ConversationLog.Retention < 0 {
			return fmt.Errorf("CONVERSATION_LOG_RETENTION cannot be negative")
		}
	}
	return nil
}

// PasswordList returns the configured shared passwords. Surrounding
// whitespace is trimmed and empty entries are dropped, so "a, b" yields "a"
// and "b"; candidates are later compared exactly.
func (c *Config) PasswordList() []string {
	return splitList(c.Passwords)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// SystemPrompt returns the persona text used as the first message of every
// session. SYSTEM_PROMPT replaces the built-in template entirely.
func (c *Config) SystemPrompt() string {
	if strings.TrimSpace(c.Persona.Prompt) != "" {
		return c.Persona.Prompt
	}
	return fmt.Sprintf(defaultPersona, c.Persona.Topic, c.Persona.Topic, c.Persona.Contact)
}

const defaultPersona = `You are a friendly assistant that only helps with %s questions.
Keep answers short and practical.
If the user asks about anything unrelated to %s, politely refuse and steer the conversation back.
Never invent account details, prices or policies you were not given.
If you cannot resolve the issue, tell the user to contact %s.`

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	res := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
