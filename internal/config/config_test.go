package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 4000, cfg.ChunkTokenBudget)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.RetryStep)
	assert.Equal(t, 1*time.Second, cfg.ChunkDelay)
	assert.Equal(t, 1, cfg.ChunkConcurrency)
	assert.Equal(t, 0, cfg.PromptTruncateChars)
	assert.True(t, cfg.RequireAPIKey)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("CHUNK_TOKEN_BUDGET", "1500")
	t.Setenv("RETRY_STEP", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Model)
	assert.Equal(t, "sk-ant-test", cfg.APIKey())
	assert.Equal(t, 1500, cfg.ChunkTokenBudget)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryStep)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func validConfig() Config {
	return Config{
		LLMProvider:      ProviderOpenAI,
		OpenAIAPIKey:     "sk-test",
		RequireAPIKey:    true,
		ChunkTokenBudget: 4000,
		MaxAttempts:      3,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing key", func(c *Config) { c.OpenAIAPIKey = "" }, "OPENAI_API_KEY is required"},
		{"missing key tolerated", func(c *Config) { c.OpenAIAPIKey = ""; c.RequireAPIKey = false }, ""},
		{"missing anthropic key", func(c *Config) { c.LLMProvider = ProviderAnthropic }, "ANTHROPIC_API_KEY is required"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "cohere" }, "LLM_PROVIDER"},
		{"zero budget", func(c *Config) { c.ChunkTokenBudget = 0 }, "CHUNK_TOKEN_BUDGET"},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, "MAX_ATTEMPTS"},
		{"negative truncation", func(c *Config) { c.PromptTruncateChars = -1 }, "PROMPT_TRUNCATE_CHARS"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
