// Package llm talks to large-language-model completion endpoints.
package llm

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dgallion1/contractlens/internal/config"
)

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	Model       string // empty uses the client default
	Temperature float64
	MaxTokens   int
	JSON        bool // ask for a JSON object where the provider supports it
}

// Completer returns the model's text for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// NewCompleter builds the client for the configured provider.
func NewCompleter(cfg config.Config) (Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.LLMTimeout), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicURL, cfg.Model, cfg.LLMTimeout), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.LLMProvider)
	}
}

// Truncate shortens s to at most n bytes for log output, cutting on a
// character boundary.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n < 0 {
		n = 0
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
