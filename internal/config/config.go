package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Phone      PhoneConfig      `yaml:"phone" mapstructure:"phone"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Redis      RedisConfig      `yaml:"redis" mapstructure:"redis"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Coach      CoachConfig      `yaml:"coach" mapstructure:"coach"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// LLMConfig selects provider backends and the shared call policy.
type LLMConfig struct {
	SearchProvider string  `yaml:"search_provider" mapstructure:"search_provider"`
	CoachProvider  string  `yaml:"coach_provider" mapstructure:"coach_provider"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RetryAttempts  int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	BreakerFails   int     `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerResetS  int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// SearchConfig configures the lead accumulation loop.
type SearchConfig struct {
	MaxAttempts   int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	OverRequest   float64 `yaml:"over_request" mapstructure:"over_request"`
	FanOut        int     `yaml:"fan_out" mapstructure:"fan_out"`
	TemplatesFile string  `yaml:"templates_file" mapstructure:"templates_file"`
	DefaultCount  int     `yaml:"default_count" mapstructure:"default_count"`
	GuardTTLSecs  int     `yaml:"guard_ttl_secs" mapstructure:"guard_ttl_secs"`
}

// PhoneConfig configures the dialing rule used for outbound message links.
type PhoneConfig struct {
	CountryCode  string `yaml:"country_code" mapstructure:"country_code"`
	LocalLengths []int  `yaml:"local_lengths" mapstructure:"local_lengths"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RedisConfig configures the optional Redis submission guard.
type RedisConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// GoogleConfig holds Google Places settings for lead enrichment.
type GoogleConfig struct {
	PlacesKey string  `yaml:"places_key" mapstructure:"places_key"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// CoachConfig configures the sales coaching tools.
type CoachConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file, and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("llm.search_provider", "gemini")
	v.SetDefault("llm.coach_provider", "gemini")
	v.SetDefault("llm.timeout_secs", 90)
	v.SetDefault("llm.rate_limit", 2.0)
	v.SetDefault("llm.retry_attempts", 2)
	v.SetDefault("llm.breaker_failures", 5)
	v.SetDefault("llm.breaker_reset_secs", 30)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("search.max_attempts", 4)
	v.SetDefault("search.over_request", 1.5)
	v.SetDefault("search.fan_out", 1)
	v.SetDefault("search.default_count", 6)
	v.SetDefault("search.guard_ttl_secs", 300)
	v.SetDefault("phone.country_code", "55")
	v.SetDefault("phone.local_lengths", []int{10, 11})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "prospect.db")
	v.SetDefault("google.rate_limit", 5.0)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("coach.concurrency", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// AutomaticEnv only resolves keys viper already knows about; credentials
	// have no defaults so bind them explicitly.
	for _, key := range []string{
		"gemini.key", "anthropic.key", "perplexity.key", "google.places_key",
		"notion.token", "notion.lead_db", "redis.url", "search.templates_file",
		"salesforce.client_id", "salesforce.username", "salesforce.key_path",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// ProviderKey returns the credential configured for the named provider.
func (c *Config) ProviderKey(provider string) string {
	switch provider {
	case "gemini":
		return c.Gemini.Key
	case "anthropic":
		return c.Anthropic.Key
	case "perplexity":
		return c.Perplexity.Key
	default:
		return ""
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
