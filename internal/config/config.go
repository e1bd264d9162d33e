package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// Optional bearer token guarding the analysis endpoints.
	ServiceAPIKey string `mapstructure:"service_api_key"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Completion endpoint
	LLMProvider     string        `mapstructure:"llm_provider"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL   string        `mapstructure:"openai_base_url"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	AnthropicURL    string        `mapstructure:"anthropic_base_url"`
	Model           string        `mapstructure:"llm_model"`
	Temperature     float64       `mapstructure:"llm_temperature"`
	MaxOutputTokens int           `mapstructure:"llm_max_output_tokens"`
	LLMTimeout      time.Duration `mapstructure:"llm_timeout"`
	RequireAPIKey   bool          `mapstructure:"require_api_key"`

	// Chunking and prompts
	ChunkTokenBudget    int `mapstructure:"chunk_token_budget"`
	PromptTruncateChars int `mapstructure:"prompt_truncate_chars"`

	// Per-chunk invocation
	MaxAttempts      int           `mapstructure:"max_attempts"`
	RetryStep        time.Duration `mapstructure:"retry_step"`
	ChunkDelay       time.Duration `mapstructure:"chunk_delay"`
	ChunkConcurrency int           `mapstructure:"chunk_concurrency"`

	// Question answering
	AskMaxChunks          int `mapstructure:"ask_max_chunks"`
	AskSummarizeThreshold int `mapstructure:"ask_summarize_threshold"`

	// PDF
	PDFFallbackPdftotext bool `mapstructure:"pdf_fallback_pdftotext"`
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

func defaults(v *viper.Viper) {
	v.SetDefault("port", "8090")
	v.SetDefault("log_level", "info")
	v.SetDefault("service_api_key", "")
	v.SetDefault("cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("max_upload_bytes", int64(20<<20))

	v.SetDefault("llm_provider", ProviderOpenAI)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_base_url", "")
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_temperature", 0.2)
	v.SetDefault("llm_max_output_tokens", 2000)
	v.SetDefault("llm_timeout", 120*time.Second)
	v.SetDefault("require_api_key", true)

	v.SetDefault("chunk_token_budget", 4000)
	v.SetDefault("prompt_truncate_chars", 0)

	v.SetDefault("max_attempts", 3)
	v.SetDefault("retry_step", 2*time.Second)
	v.SetDefault("chunk_delay", 1*time.Second)
	v.SetDefault("chunk_concurrency", 1)

	v.SetDefault("ask_max_chunks", 0)
	v.SetDefault("ask_summarize_threshold", 1500)

	v.SetDefault("pdf_fallback_pdftotext", true)
}

// Load reads .env, an optional config.yaml in the working directory, and the
// process environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, eris.Wrap(err, "config: read config file")
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "config: unmarshal")
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills derived defaults (provider, model, limits) and splits
// comma-separated origins. Load calls it; callers that edit a Config
// afterwards should call it again.
func (c *Config) Normalize() {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if c.LLMProvider == "" {
		c.LLMProvider = ProviderOpenAI
	}
	if c.Model == "" {
		switch c.LLMProvider {
		case ProviderAnthropic:
			c.Model = "claude-sonnet-4-5-20250929"
		default:
			c.Model = "gpt-4o-mini"
		}
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 20 << 20
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = 2000
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = 120 * time.Second
	}
	if c.ChunkConcurrency <= 0 {
		c.ChunkConcurrency = 1
	}
	if c.ChunkDelay < 0 {
		c.ChunkDelay = 0
	}
	if c.RetryStep < 0 {
		c.RetryStep = 0
	}
	// Origins may arrive as one comma-separated env value.
	var origins []string
	for _, o := range c.CORSAllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	c.CORSAllowedOrigins = origins
}

// APIKey returns the credential for the selected provider.
func (c Config) APIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// Validate reports configuration that would make the service unusable.
// A missing credential is only an error when RequireAPIKey is set; callers
// should use MissingAPIKey to warn otherwise.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.LLMProvider)
	}
	if c.RequireAPIKey && c.MissingAPIKey() {
		return fmt.Errorf("%s is required for provider %q", c.apiKeyEnv(), c.LLMProvider)
	}
	if c.ChunkTokenBudget <= 0 {
		return fmt.Errorf("CHUNK_TOKEN_BUDGET must be positive, got %d", c.ChunkTokenBudget)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("MAX_ATTEMPTS must be positive, got %d", c.MaxAttempts)
	}
	if c.PromptTruncateChars < 0 {
		return fmt.Errorf("PROMPT_TRUNCATE_CHARS must not be negative, got %d", c.PromptTruncateChars)
	}
	return nil
}

// MissingAPIKey reports whether the selected provider has no credential.
func (c Config) MissingAPIKey() bool {
	return strings.TrimSpace(c.APIKey()) == ""
}

func (c Config) apiKeyEnv() string {
	if c.LLMProvider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}
