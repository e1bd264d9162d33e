package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgallion1/contractlens/internal/config"
	"github.com/dgallion1/contractlens/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constCompleter string

func (c constCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	return string(c), nil
}

func TestAnalyzerOptions(t *testing.T) {
	cfg := config.Config{
		Model:                 "m",
		Temperature:           0.3,
		MaxOutputTokens:       900,
		ChunkTokenBudget:      1200,
		PromptTruncateChars:   5000,
		MaxAttempts:           4,
		RetryStep:             time.Second,
		ChunkDelay:            2 * time.Second,
		ChunkConcurrency:      3,
		AskMaxChunks:          6,
		AskSummarizeThreshold: 700,
	}
	opts := AnalyzerOptions(cfg)
	assert.Equal(t, "m", opts.Model)
	assert.Equal(t, 0.3, opts.Temperature)
	assert.Equal(t, 900, opts.MaxOutputTokens)
	assert.Equal(t, 1200, opts.ChunkTokens)
	assert.Equal(t, 5000, opts.TruncateChars)
	assert.Equal(t, 4, opts.MaxAttempts)
	assert.Equal(t, time.Second, opts.RetryStep)
	assert.Equal(t, 2*time.Second, opts.ChunkDelay)
	assert.Equal(t, 3, opts.Concurrency)
	assert.Equal(t, 6, opts.AskMaxChunks)
	assert.Equal(t, 700, opts.AskSummarizeThreshold)
}

func TestNew_Providers(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))

	a, err := New(config.Config{LLMProvider: config.ProviderAnthropic, AnthropicAPIKey: "k"}, log)
	require.NoError(t, err)
	assert.NotNil(t, a.Analyzer)
	assert.NotNil(t, a.Extractor)
	assert.NotNil(t, a.Stats)

	_, err = New(config.Config{LLMProvider: "other"}, log)
	assert.Error(t, err)
}

func TestHandler_ServesAnalysis(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := config.Config{LLMProvider: config.ProviderOpenAI, Model: "m", MaxUploadBytes: 1 << 20, ChunkTokenBudget: 4000, MaxAttempts: 1}
	a := NewWithCompleter(cfg, constCompleter(`{"summary": "A lease."}`), log)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	res, err := a.Analyzer.Analyze(context.Background(), "Alice leases the flat from Bob.")
	require.NoError(t, err)
	v, _ := res.Analysis.Get("summary")
	assert.Equal(t, "A lease.", v.Text)
	assert.Equal(t, 1, a.Stats.Snapshot().OK)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	log = NewLogger(&buf, "nonsense")
	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
