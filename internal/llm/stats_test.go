package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(100, OK)
	stats.Record(200, OK)
	stats.Record(300, Retryable)
	stats.Record(400, OK)
	stats.Record(500, Fatal)

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.OK != 3 || snap.Retryable != 1 || snap.Fatal != 1 {
		t.Fatalf("unexpected outcome counts: %+v", snap)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record(100, OK)
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200, OK)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(-10, OK)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

type funcCompleter func(ctx context.Context, req Request) (string, error)

func (f funcCompleter) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func TestWithStatsRecordsOutcomes(t *testing.T) {
	stats := NewStats(time.Hour)
	calls := 0
	c := WithStats(funcCompleter(func(ctx context.Context, req Request) (string, error) {
		calls++
		if calls == 1 {
			return "", &StatusError{StatusCode: 429}
		}
		return "{}", nil
	}), stats)

	if _, err := c.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected first call to fail")
	}
	if _, err := c.Complete(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := stats.Snapshot()
	if snap.Count != 2 || snap.OK != 1 || snap.Retryable != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	plain := funcCompleter(func(ctx context.Context, req Request) (string, error) { return "", errors.New("x") })
	if WithStats(plain, nil) == nil {
		t.Fatal("expected completer when stats is nil")
	}
}
