// Package pipeline runs chunked model analysis and question answering over
// extracted document text.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/contractlens/internal/apperr"
	"github.com/dgallion1/contractlens/internal/chunker"
	"github.com/dgallion1/contractlens/internal/extract"
	"github.com/dgallion1/contractlens/internal/llm"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const StatusComplete = "complete"

// StatusPartial is reported when some chunks produced no result.
var StatusPartial = apperr.PartialSuccess.String()

const noTextMessage = "No text could be extracted from the document"

// Options tunes model calls, chunking and pacing.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int

	ChunkTokens   int
	TruncateChars int

	MaxAttempts int
	RetryStep   time.Duration
	ChunkDelay  time.Duration // minimum spacing between chunk call starts
	Concurrency int           // chunks in flight; 1 is sequential

	AskMaxChunks          int // 0 asks every chunk
	AskSummarizeThreshold int // characters; 0 never summarizes
}

// Analyzer turns document text into a merged contract analysis.
type Analyzer struct {
	llm     llm.Completer
	opts    Options
	prompts extract.Builder
	schema  extract.Schema
	log     *slog.Logger
	now     func() time.Time
}

func NewAnalyzer(c llm.Completer, opts Options, log *slog.Logger) *Analyzer {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.ChunkTokens <= 0 {
		opts.ChunkTokens = chunker.DefaultMaxTokens
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{
		llm:     c,
		opts:    opts,
		prompts: extract.Builder{Schema: extract.ContractSchema, TruncateChars: opts.TruncateChars},
		schema:  extract.ContractSchema,
		log:     log,
		now:     time.Now,
	}
}

// Metadata describes how a result was produced.
type Metadata struct {
	AnalysisID       string    `json:"analysis_id"`
	Timestamp        time.Time `json:"timestamp"`
	Model            string    `json:"model"`
	DocumentLength   int       `json:"document_length"`
	TotalChunks      int       `json:"total_chunks"`
	SuccessfulChunks int       `json:"successful_chunks"`
	FailedChunks     []int     `json:"failed_chunks"`
	Status           string    `json:"status"`
	Truncated        bool      `json:"truncated"`
}

// Result is a merged analysis plus its metadata block.
type Result struct {
	Analysis *extract.Analysis
	Metadata Metadata
}

func (r *Result) MarshalJSON() ([]byte, error) {
	fields := r.Analysis.Fields()
	fields["analysis_metadata"] = r.Metadata
	return json.Marshal(fields)
}

// Analyze splits text into chunks, analyzes each one and merges the results
// in chunk order. Chunks that fail every attempt are left out of the merge
// and listed in the metadata. The call fails only when the text is empty or
// no chunk succeeded.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Result, error) {
	docLen := utf8.RuneCountInString(text)
	chunks := chunker.Split(text, chunker.Config{MaxTokens: a.opts.ChunkTokens})
	if len(chunks) == 0 {
		return nil, apperr.New(apperr.ExtractionFailed, noTextMessage)
	}

	id := uuid.NewString()
	log := a.log.With("analysis_id", id)
	log.Info("analysis started", "document_length", docLen, "chunks", len(chunks))
	start := time.Now()

	system := a.prompts.AnalysisSystemPrompt()
	partials := make([]*extract.Analysis, len(chunks))
	errs := make([]error, len(chunks))

	err := a.forEachChunk(ctx, chunks, func(ctx context.Context, c chunker.Chunk) {
		req := llm.Request{
			System:      system,
			Prompt:      a.prompts.ChunkAnalysisPrompt(c.Text, c.Index, len(chunks)),
			Model:       a.opts.Model,
			Temperature: a.opts.Temperature,
			MaxTokens:   a.opts.MaxOutputTokens,
			JSON:        true,
		}
		partials[c.Index], errs[c.Index] = a.analyzeChunk(ctx, log.With("chunk", c.Index), req)
	})
	if err != nil {
		return nil, err
	}

	var ok []*extract.Analysis
	var failed []int
	for i, p := range partials {
		if p == nil {
			failed = append(failed, i)
			continue
		}
		ok = append(ok, p)
	}

	if len(ok) == 0 {
		log.Error("analysis failed", "chunks", len(chunks), "error", errs[len(errs)-1])
		return nil, allFailedError(errs)
	}

	status := StatusComplete
	if len(failed) > 0 {
		status = StatusPartial
	}
	if failed == nil {
		failed = []int{}
	}

	result := &Result{
		Analysis: extract.Merge(a.schema, ok...),
		Metadata: Metadata{
			AnalysisID:       id,
			Timestamp:        a.now().UTC(),
			Model:            a.opts.Model,
			DocumentLength:   docLen,
			TotalChunks:      len(chunks),
			SuccessfulChunks: len(ok),
			FailedChunks:     failed,
			Status:           status,
			Truncated:        a.truncates(chunks),
		},
	}
	log.Info("analysis complete",
		"status", status,
		"successful_chunks", len(ok),
		"failed_chunks", len(failed),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (a *Analyzer) analyzeChunk(ctx context.Context, log *slog.Logger, req llm.Request) (*extract.Analysis, error) {
	parsed, attempts, err := Invoke(ctx, a.policy(), func(ctx context.Context, attempt int) Attempt[*extract.Analysis] {
		raw, err := a.llm.Complete(ctx, req)
		if err != nil {
			outcome := llm.Classify(err)
			log.Warn("chunk call failed", "attempt", attempt, "outcome", outcome.String(), "error", err)
			return Attempt[*extract.Analysis]{Outcome: outcome, Err: err}
		}
		parsed, err := extract.ParseAnalysis(raw, a.schema)
		if err != nil {
			log.Warn("chunk output unparseable", "attempt", attempt, "error", err, "raw", llm.Truncate(raw, 500))
			return Attempt[*extract.Analysis]{Outcome: llm.Classify(err), Err: err}
		}
		extract.Normalize(parsed)
		return Attempt[*extract.Analysis]{Value: parsed, Outcome: llm.OK}
	})
	if err != nil {
		log.Error("chunk dropped", "attempts", attempts, "error", err)
		return nil, err
	}
	return parsed, nil
}

// forEachChunk runs fn for every chunk on a bounded pool, starting at most
// one chunk per ChunkDelay. fn stores its own result by chunk index, so
// completion order does not matter.
func (a *Analyzer) forEachChunk(ctx context.Context, chunks []chunker.Chunk, fn func(context.Context, chunker.Chunk)) error {
	limit := rate.Inf
	if a.opts.ChunkDelay > 0 {
		limit = rate.Every(a.opts.ChunkDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for _, c := range chunks {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			fn(gctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("process chunks: %w", err)
	}
	return ctx.Err()
}

func (a *Analyzer) policy() Policy {
	return Policy{
		MaxAttempts: a.opts.MaxAttempts,
		Backoff:     LinearBackoff(a.opts.RetryStep),
	}
}

func (a *Analyzer) truncates(chunks []chunker.Chunk) bool {
	if a.opts.TruncateChars <= 0 {
		return false
	}
	for _, c := range chunks {
		if utf8.RuneCountInString(c.Text) > a.opts.TruncateChars {
			return true
		}
	}
	return false
}

// allFailedError reports a document where no chunk produced a result. It is
// ModelOutputUnparseable when every chunk's last failure was bad output.
func allFailedError(errs []error) error {
	unparseable := true
	var last error
	for _, err := range errs {
		if err == nil {
			continue
		}
		last = err
		if !errors.Is(err, llm.ErrUnparseable) {
			unparseable = false
		}
	}
	if unparseable && last != nil {
		return apperr.Wrap(last, apperr.ModelOutputUnparseable, "failed to parse analysis results")
	}
	return apperr.Wrap(last, apperr.ModelUnavailable, fmt.Sprintf("model endpoint failed for all %d chunks", len(errs)))
}
