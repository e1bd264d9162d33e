// Package app assembles the analyzer's components from configuration. Both
// the HTTP server and the CLI build on it.
package app

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/contractlens/internal/api"
	"github.com/dgallion1/contractlens/internal/config"
	"github.com/dgallion1/contractlens/internal/llm"
	"github.com/dgallion1/contractlens/internal/parser"
	"github.com/dgallion1/contractlens/internal/pipeline"
	"github.com/rotisserie/eris"
)

// statsWindow is how far back the LLM latency stats reach.
const statsWindow = time.Hour

type App struct {
	Config    config.Config
	Extractor *parser.Extractor
	Analyzer  *pipeline.Analyzer
	Stats     *llm.Stats
	Log       *slog.Logger
}

// New builds the completion client for the configured provider and the
// pipeline around it. It does not validate cfg.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	c, err := llm.NewCompleter(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "app: build completer")
	}
	return NewWithCompleter(cfg, c, log), nil
}

// NewWithCompleter is New with a caller-supplied completion client.
func NewWithCompleter(cfg config.Config, c llm.Completer, log *slog.Logger) *App {
	stats := llm.NewStats(statsWindow)
	return &App{
		Config:    cfg,
		Extractor: parser.NewExtractor(parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}),
		Analyzer:  pipeline.NewAnalyzer(llm.WithStats(c, stats), AnalyzerOptions(cfg), log),
		Stats:     stats,
		Log:       log,
	}
}

// Handler returns the HTTP API over this app.
func (a *App) Handler() http.Handler {
	return api.NewServer(a.Extractor, a.Analyzer, a.Stats, a.Log, a.Config)
}

func AnalyzerOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		Model:                 cfg.Model,
		Temperature:           cfg.Temperature,
		MaxOutputTokens:       cfg.MaxOutputTokens,
		ChunkTokens:           cfg.ChunkTokenBudget,
		TruncateChars:         cfg.PromptTruncateChars,
		MaxAttempts:           cfg.MaxAttempts,
		RetryStep:             cfg.RetryStep,
		ChunkDelay:            cfg.ChunkDelay,
		Concurrency:           cfg.ChunkConcurrency,
		AskMaxChunks:          cfg.AskMaxChunks,
		AskSummarizeThreshold: cfg.AskSummarizeThreshold,
	}
}

// NewLogger returns a JSON slog logger at the named level. Unknown levels
// fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
