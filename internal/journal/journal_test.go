package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sortline/internal/figure"
	"sortline/internal/journal"
	"sortline/internal/queue"
)

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	first, err := j.Record(ctx, journal.Entry{
		ItemID:       1,
		RequestID:    "req-1",
		Kind:         figure.Circle,
		Status:       queue.StatusSorted,
		Stage:        "reset",
		TargetX:      370,
		CounterValue: 1,
		DroppedAt:    0,
		FinishedAt:   6700 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first.ID == 0 || first.RecordedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", first)
	}
	if _, err := j.Record(ctx, journal.Entry{
		ItemID:       2,
		Kind:         figure.Square,
		Status:       queue.StatusFailed,
		Stage:        "transfer",
		ErrorKind:    "missing_bin",
		ErrorMessage: "no bin",
	}); err != nil {
		t.Fatalf("Record failure: %v", err)
	}

	entries, err := j.List(ctx, journal.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].ItemID != 1 || entries[1].ItemID != 2 {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].Duration() != 6700*time.Millisecond || entries[0].RequestID != "req-1" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].RequestID != "" || entries[1].ErrorKind != "missing_bin" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}

	failed, err := j.List(ctx, journal.Filter{Status: queue.StatusFailed})
	if err != nil || len(failed) != 1 || failed[0].Kind != figure.Square {
		t.Fatalf("unexpected filtered list %+v %v", failed, err)
	}
}

func TestSummaryAndStats(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)
	record := func(kind figure.Kind, status queue.Status, took time.Duration) {
		t.Helper()
		if _, err := j.Record(ctx, journal.Entry{ItemID: 1, Kind: kind, Status: status, FinishedAt: took}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	record(figure.Circle, queue.StatusSorted, 2*time.Second)
	record(figure.Circle, queue.StatusSorted, 4*time.Second)
	record(figure.Triangle, queue.StatusFailed, time.Second)

	summary, err := j.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected two kinds, got %+v", summary)
	}
	circle := summary[0]
	if circle.Kind != figure.Circle || circle.Sorted != 2 || circle.Failed != 0 || circle.AvgDuration != 3*time.Second {
		t.Fatalf("unexpected circle summary %+v", circle)
	}
	if summary[1].Kind != figure.Triangle || summary[1].Failed != 1 {
		t.Fatalf("unexpected triangle summary %+v", summary[1])
	}

	stats, err := j.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StatusSorted] != 2 || stats[queue.StatusFailed] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestClosedJournal(t *testing.T) {
	j, err := journal.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := j.Record(context.Background(), journal.Entry{}); !errors.Is(err, journal.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
