package config

import "time"

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// GetLogging returns the logging section.
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:  c.v.GetString("logging.level"),
		Format: c.v.GetString("logging.format"),
	}
}

// LLMConfig selects the completion provider.
type LLMConfig struct {
	Provider string
}

// GetLLM returns the provider selection section.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{Provider: c.v.GetString("llm.provider")}
}

// OpenAIConfig configures the OpenAI-compatible completion adapter. BaseURL
// is empty for api.openai.com and points at DeepSeek's endpoint when the
// deepseek provider is selected.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

// GetOpenAI returns the openai section.
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.v.GetString("openai.api_key"),
		BaseURL:     c.v.GetString("openai.base_url"),
		ModelName:   c.v.GetString("openai.model_name"),
		MaxTokens:   c.v.GetInt("openai.max_tokens"),
		Temperature: c.v.GetFloat64("openai.temperature"),
		TopP:        c.v.GetFloat64("openai.top_p"),
		Timeout:     c.v.GetDuration("openai.timeout"),
	}
}

// GetDeepSeek returns the openai-shaped config for the DeepSeek provider.
func (c *Config) GetDeepSeek() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.v.GetString("deepseek.api_key"),
		BaseURL:     c.v.GetString("deepseek.base_url"),
		ModelName:   c.v.GetString("deepseek.model_name"),
		MaxTokens:   c.v.GetInt("openai.max_tokens"),
		Temperature: c.v.GetFloat64("openai.temperature"),
		TopP:        c.v.GetFloat64("openai.top_p"),
		Timeout:     c.v.GetDuration("openai.timeout"),
	}
}

// GeminiConfig configures the Gemini completion adapter.
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// GetGemini returns the gemini section.
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.v.GetString("gemini.api_key"),
		ModelName:   c.v.GetString("gemini.model_name"),
		MaxTokens:   c.v.GetInt("gemini.max_tokens"),
		Temperature: c.v.GetFloat64("gemini.temperature"),
		TopP:        c.v.GetFloat64("gemini.top_p"),
	}
}

// BedrockConfig configures the AWS Bedrock completion adapter.
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// GetBedrock returns the bedrock section.
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.v.GetString("bedrock.region"),
		ModelID:     c.v.GetString("bedrock.model_id"),
		MaxTokens:   c.v.GetInt("bedrock.max_tokens"),
		Temperature: c.v.GetFloat64("bedrock.temperature"),
		TopP:        c.v.GetFloat64("bedrock.top_p"),
	}
}

// SchedulerConfig carries the decision policy knobs.
type SchedulerConfig struct {
	Timezone          string
	MeetingDuration   time.Duration
	MaxAlternatives   int
	SearchHorizonDays int
	BusinessHours     []int
	MinContentLength  int
	MaxPromptChars    int
	MaxSummaryChars   int
	AITimeout         time.Duration
	MeetingPhrases    []string
	ExclusionPhrases  []string
	ReschedulePhrases []string
}

// GetScheduler returns the scheduler section.
func (c *Config) GetScheduler() SchedulerConfig {
	return SchedulerConfig{
		Timezone:          c.v.GetString("scheduler.timezone"),
		MeetingDuration:   c.v.GetDuration("scheduler.meeting_duration"),
		MaxAlternatives:   c.v.GetInt("scheduler.max_alternatives"),
		SearchHorizonDays: c.v.GetInt("scheduler.search_horizon_days"),
		BusinessHours:     c.v.GetIntSlice("scheduler.business_hours"),
		MinContentLength:  c.v.GetInt("scheduler.min_content_length"),
		MaxPromptChars:    c.v.GetInt("scheduler.max_prompt_chars"),
		MaxSummaryChars:   c.v.GetInt("scheduler.max_summary_chars"),
		AITimeout:         c.v.GetDuration("scheduler.ai_timeout"),
		MeetingPhrases:    c.v.GetStringSlice("scheduler.meeting_phrases"),
		ExclusionPhrases:  c.v.GetStringSlice("scheduler.exclusion_phrases"),
		ReschedulePhrases: c.v.GetStringSlice("scheduler.reschedule_phrases"),
	}
}

// GoogleConfig locates Google API credentials.
type GoogleConfig struct {
	CredentialsPath string
	TokenPath       string
	CalendarID      string
}

// GetGoogle returns the google section.
func (c *Config) GetGoogle() GoogleConfig {
	return GoogleConfig{
		CredentialsPath: c.v.GetString("google.credentials_path"),
		TokenPath:       c.v.GetString("google.token_path"),
		CalendarID:      c.v.GetString("google.calendar_id"),
	}
}

// MailConfig selects the outbound mail transport.
type MailConfig struct {
	Transport string
}

// GetMail returns the mail section.
func (c *Config) GetMail() MailConfig {
	return MailConfig{Transport: c.v.GetString("mail.transport")}
}

// SMTPConfig configures the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// GetSMTP returns the smtp section.
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Host:     c.v.GetString("smtp.host"),
		Port:     c.v.GetInt("smtp.port"),
		Username: c.v.GetString("smtp.username"),
		Password: c.v.GetString("smtp.password"),
		From:     c.v.GetString("smtp.from"),
		Timeout:  c.v.GetDuration("smtp.timeout"),
	}
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// GetStore returns the store section.
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.v.GetString("store.type"),
		SQLitePath: c.v.GetString("store.sqlite_path"),
		MySQLDSN:   c.v.GetString("store.mysql_dsn"),
	}
}

// ServerConfig configures the front end.
type ServerConfig struct {
	Frontend      string
	ListenAddress string
	PollInterval  time.Duration
	Lookback      time.Duration
	MaxMessages   int64
}

// GetServer returns the server section.
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		Frontend:      c.v.GetString("server.frontend"),
		ListenAddress: c.v.GetString("server.listen_address"),
		PollInterval:  c.v.GetDuration("server.poll_interval"),
		Lookback:      c.v.GetDuration("server.lookback"),
		MaxMessages:   c.v.GetInt64("server.max_messages"),
	}
}
