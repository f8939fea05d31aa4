package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config wraps viper and exposes typed section getters.
type Config struct {
	v *viper.Viper
}

// New loads configuration from config.yaml (working directory or
// /etc/email-assistant) with EMAIL_ASSISTANT_* environment overrides. A
// missing config file is fine, defaults and environment carry the day.
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/email-assistant")
	v.AutomaticEnv()
	v.SetEnvPrefix("EMAIL_ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return &Config{v: v}, nil
}

// NewFromViper wraps an existing viper instance, used by the CLI binary to
// build configuration from flags.
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper returns a viper instance carrying only the defaults.
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// LLM provider selection
	v.SetDefault("llm.provider", "deepseek")

	// OpenAI-compatible providers
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.timeout", "30s")

	// DeepSeek rides the OpenAI-compatible adapter.
	v.SetDefault("deepseek.api_key", "")
	v.SetDefault("deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("deepseek.model_name", "deepseek-chat")

	// Gemini
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 500)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)

	// Bedrock
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 500)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	// Scheduling policy
	v.SetDefault("scheduler.timezone", "Asia/Dubai")
	v.SetDefault("scheduler.meeting_duration", "1h")
	v.SetDefault("scheduler.max_alternatives", 3)
	v.SetDefault("scheduler.search_horizon_days", 7)
	v.SetDefault("scheduler.business_hours", []int{9, 11, 14, 16})
	v.SetDefault("scheduler.min_content_length", 20)
	v.SetDefault("scheduler.max_prompt_chars", 2000)
	v.SetDefault("scheduler.max_summary_chars", 500)
	v.SetDefault("scheduler.ai_timeout", "30s")
	v.SetDefault("scheduler.meeting_phrases", []string{})
	v.SetDefault("scheduler.exclusion_phrases", []string{})
	v.SetDefault("scheduler.reschedule_phrases", []string{})

	// Google APIs
	v.SetDefault("google.credentials_path", "credentials.json")
	v.SetDefault("google.token_path", "token.json")
	v.SetDefault("google.calendar_id", "primary")

	// Mail transport
	v.SetDefault("mail.transport", "gmail")
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.timeout", "10s")

	// Store
	v.SetDefault("store.type", "sqlite")
	v.SetDefault("store.sqlite_path", "data/email_assistant.db")
	v.SetDefault("store.mysql_dsn", "")

	// Front end
	v.SetDefault("server.frontend", "poller")
	v.SetDefault("server.listen_address", ":8080")
	v.SetDefault("server.poll_interval", "2m")
	v.SetDefault("server.lookback", "24h")
	v.SetDefault("server.max_messages", 25)
}

// GetString returns a raw string value.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns a raw int value.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool returns a raw bool value.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration returns a raw duration value.
func (c *Config) GetDuration(key string) time.Duration {
	return c.v.GetDuration(key)
}
