package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/contractlens/internal/apperr"
	"github.com/dgallion1/contractlens/internal/chunker"
	"github.com/dgallion1/contractlens/internal/extract"
	"github.com/dgallion1/contractlens/internal/llm"
	"github.com/dgallion1/contractlens/internal/search"
	"github.com/google/uuid"
)

// NoRelevantInformation is the answer when no chunk addressed the question.
const NoRelevantInformation = "No relevant information was found in the document to answer this question."

const answerSeparator = "\n\n"

var noAnswerMarker = strings.ToLower(extract.NoAnswerMarker)

// refusalPrefixes mark a chunk answer that declines to answer.
var refusalPrefixes = []string{
	"no relevant",
	"i don't",
	"i dont",
	"i do not",
	"i cannot",
	"i can't",
	"i can not",
	"i'm sorry",
	"i am sorry",
	"i am unable",
	"i'm unable",
	"the excerpt does not",
	"this excerpt does not",
	"the provided excerpt does not",
	"the contract excerpt does not",
}

// IsRefusal reports whether a chunk answer is empty or declines to answer.
func IsRefusal(answer string) bool {
	s := strings.ToLower(strings.TrimSpace(answer))
	s = strings.TrimLeft(s, "\"'*_` ")
	s = strings.ReplaceAll(s, "’", "'")
	if s == "" || strings.Contains(s, noAnswerMarker) {
		return true
	}
	for _, p := range refusalPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// AnswerMetadata describes how an answer was produced.
type AnswerMetadata struct {
	AnswerID        string    `json:"answer_id"`
	Timestamp       time.Time `json:"timestamp"`
	Model           string    `json:"model"`
	TotalChunks     int       `json:"total_chunks"`
	ChunksConsulted int       `json:"chunks_consulted"`
	ChunksAnswered  int       `json:"chunks_answered"`
	FailedChunks    []int     `json:"failed_chunks"`
	Summarized      bool      `json:"summarized"`
	Found           bool      `json:"found"`
}

// Answer is the reply to a question about a document.
type Answer struct {
	Text     string
	Metadata AnswerMetadata
}

func (a *Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Answer   string         `json:"answer"`
		Metadata AnswerMetadata `json:"answer_metadata"`
	}{a.Text, a.Metadata})
}

// Ask answers question from text one chunk at a time. Refusals are
// discarded, the remaining answers are joined in chunk order and, past the
// summarize threshold, condensed with one more call. When no chunk has an
// answer the result is NoRelevantInformation rather than an error.
func (a *Analyzer) Ask(ctx context.Context, text, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.New(apperr.InvalidInput, "Question is required")
	}
	chunks := chunker.Split(text, chunker.Config{MaxTokens: a.opts.ChunkTokens})
	if len(chunks) == 0 {
		return nil, apperr.New(apperr.ExtractionFailed, noTextMessage)
	}

	id := uuid.NewString()
	log := a.log.With("answer_id", id)

	consulted := chunks
	if a.opts.AskMaxChunks > 0 && len(chunks) > a.opts.AskMaxChunks {
		ranked, err := search.RankChunks(question, chunks, a.opts.AskMaxChunks)
		if err != nil {
			log.Warn("chunk ranking failed, using leading chunks", "error", err)
			ranked = chunks[:a.opts.AskMaxChunks]
		}
		consulted = ranked
	}
	log.Info("question started", "chunks", len(chunks), "consulted", len(consulted))

	answers := make([]string, len(consulted))
	errs := make([]error, len(consulted))
	system := a.prompts.QuestionSystemPrompt()

	// Results are stored by position in consulted, not by chunk index.
	positions := make(map[int]int, len(consulted))
	for i, c := range consulted {
		positions[c.Index] = i
	}
	err := a.forEachChunk(ctx, consulted, func(ctx context.Context, c chunker.Chunk) {
		req := llm.Request{
			System:      system,
			Prompt:      a.prompts.QuestionPrompt(c.Text, question),
			Model:       a.opts.Model,
			Temperature: a.opts.Temperature,
			MaxTokens:   a.opts.MaxOutputTokens,
		}
		pos := positions[c.Index]
		answers[pos], errs[pos] = a.complete(ctx, log.With("chunk", c.Index), req)
	})
	if err != nil {
		return nil, err
	}

	meta := AnswerMetadata{
		AnswerID:        id,
		Timestamp:       a.now().UTC(),
		Model:           a.opts.Model,
		TotalChunks:     len(chunks),
		ChunksConsulted: len(consulted),
		FailedChunks:    []int{},
	}
	var usable []string
	for i, ans := range answers {
		if errs[i] != nil {
			meta.FailedChunks = append(meta.FailedChunks, consulted[i].Index)
			continue
		}
		if IsRefusal(ans) {
			continue
		}
		usable = append(usable, strings.TrimSpace(ans))
	}
	meta.ChunksAnswered = len(usable)

	if len(meta.FailedChunks) == len(consulted) {
		return nil, apperr.Wrap(errs[len(errs)-1], apperr.ModelUnavailable, "model endpoint failed for every chunk")
	}
	if len(usable) == 0 {
		log.Info("question answered", "found", false)
		return &Answer{Text: NoRelevantInformation, Metadata: meta}, nil
	}

	meta.Found = true
	combined := strings.Join(usable, answerSeparator)
	if len(usable) > 1 && a.opts.AskSummarizeThreshold > 0 && utf8.RuneCountInString(combined) > a.opts.AskSummarizeThreshold {
		summary, err := a.complete(ctx, log, llm.Request{
			System:      system,
			Prompt:      a.prompts.SummarizePrompt(question, combined),
			Model:       a.opts.Model,
			Temperature: a.opts.Temperature,
			MaxTokens:   a.opts.MaxOutputTokens,
		})
		if err != nil || strings.TrimSpace(summary) == "" {
			log.Warn("summarization failed, returning combined answers", "error", err)
		} else {
			combined = strings.TrimSpace(summary)
			meta.Summarized = true
		}
	}

	log.Info("question answered", "found", true, "chunks_answered", meta.ChunksAnswered, "summarized", meta.Summarized)
	return &Answer{Text: combined, Metadata: meta}, nil
}

// complete runs one free-text call through the retry loop.
func (a *Analyzer) complete(ctx context.Context, log *slog.Logger, req llm.Request) (string, error) {
	text, attempts, err := Invoke(ctx, a.policy(), func(ctx context.Context, attempt int) Attempt[string] {
		text, err := a.llm.Complete(ctx, req)
		if err != nil {
			outcome := llm.Classify(err)
			log.Warn("model call failed", "attempt", attempt, "outcome", outcome.String(), "error", err)
			return Attempt[string]{Outcome: outcome, Err: err}
		}
		return Attempt[string]{Value: text, Outcome: llm.OK}
	})
	if err != nil {
		log.Error("model call dropped", "attempts", attempts, "error", err)
	}
	return text, err
}
