package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dgallion1/contractlens/internal/app"
	"github.com/dgallion1/contractlens/internal/apperr"
	"github.com/dgallion1/contractlens/internal/config"
	"github.com/dgallion1/contractlens/internal/parser"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "contract-analyzer",
	Short: "Analyze contracts with a language model",
	Long: `Extracts text from a contract (PDF, DOCX, Markdown, HTML or plain text),
splits it into token-bounded chunks and asks the configured model for a
structured analysis or an answer to a question.

Configuration comes from .env, config.yaml and the environment; the flags
below override it for one run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := applyFlags(cmd, &c); err != nil {
			return err
		}
		cfg = c
		logger = app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
		return nil
	},
}

func init() {
	addOverrideFlags(rootCmd)
}

func addOverrideFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("provider", "", "LLM provider: openai or anthropic (overrides config)")
	f.String("model", "", "model name (overrides config)")
	f.Int("chunk-tokens", 0, "per-chunk token budget (overrides config)")
	f.Int("concurrency", 0, "chunks analyzed in parallel (overrides config)")
	f.String("log-level", "", "debug, info, warn or error (overrides config)")
}

// applyFlags copies explicitly set flags onto c.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	if f.Changed("provider") {
		v, _ := f.GetString("provider")
		c.LLMProvider = v
		if !f.Changed("model") {
			// The configured model belongs to the old provider.
			c.Model = ""
		}
	}
	if f.Changed("model") {
		v, _ := f.GetString("model")
		c.Model = v
	}
	if f.Changed("chunk-tokens") {
		v, _ := f.GetInt("chunk-tokens")
		if v <= 0 {
			return eris.Errorf("--chunk-tokens must be positive, got %d", v)
		}
		c.ChunkTokenBudget = v
	}
	if f.Changed("concurrency") {
		v, _ := f.GetInt("concurrency")
		c.ChunkConcurrency = v
	}
	if f.Changed("log-level") {
		v, _ := f.GetString("log-level")
		c.LogLevel = v
	}
	c.Normalize()
	return nil
}

// readDocument extracts the text of the file at path.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrap(err, "read document")
	}
	ext := parser.NewExtractor(parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
	return ext.Extract(data, filepath.Base(path))
}

// newApp validates the configuration and builds the pipeline.
func newApp() (*app.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid configuration")
	}
	if cfg.MissingAPIKey() {
		logger.Warn("no API key configured for provider, model calls will fail", "provider", cfg.LLMProvider)
	}
	return app.New(cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitCode is 2 for problems with the input document, 1 otherwise.
func exitCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.InvalidInput, apperr.ExtractionFailed:
		return 2
	default:
		return 1
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
