package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/dgallion1/contractlens/internal/llm"
)

// scriptedCompleter answers each request with reply, counting calls per
// distinguishing prompt marker.
type scriptedCompleter struct {
	mu    sync.Mutex
	calls map[string]int
	reply func(req llm.Request, call int) (string, error)
	key   func(req llm.Request) string
}

func newScripted(reply func(req llm.Request, call int) (string, error)) *scriptedCompleter {
	return &scriptedCompleter{calls: map[string]int{}, reply: reply}
}

func (s *scriptedCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	k := req.Prompt
	if s.key != nil {
		k = s.key(req)
	}
	s.mu.Lock()
	s.calls[k]++
	n := s.calls[k]
	s.mu.Unlock()
	return s.reply(req, n)
}

func (s *scriptedCompleter) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testOptions() Options {
	return Options{
		Model:       "test-model",
		ChunkTokens: 4000,
		MaxAttempts: 3,
		Concurrency: 1,
	}
}

// partKey groups calls by which part of the document they cover.
func partKey(req llm.Request) string {
	for _, p := range []string{"part 1 of", "part 2 of", "part 3 of"} {
		if strings.Contains(req.Prompt, p) {
			return p
		}
	}
	return req.Prompt
}
