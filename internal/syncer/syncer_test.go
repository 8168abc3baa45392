package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/worklog/internal/cloud"
	"github.com/sadopc/worklog/internal/stats"
	"github.com/sadopc/worklog/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeWriter records every upsert and can be told to fail.
type fakeWriter struct {
	mu      sync.Mutex
	upserts []cloud.DailyStat
	err     error
}

func (w *fakeWriter) UpsertDailyStat(ctx context.Context, stat cloud.DailyStat) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.upserts = append(w.upserts, stat)
	return nil
}

func (w *fakeWriter) calls() []cloud.DailyStat {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]cloud.DailyStat, len(w.upserts))
	copy(out, w.upserts)
	return out
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedDay(t *testing.T, s *store.Store, date string, durations ...time.Duration) {
	t.Helper()
	c, err := s.CreateCategory("Work")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	from, _, err := stats.DayRange(date)
	if err != nil {
		t.Fatal(err)
	}
	at := from.Add(time.Hour)
	for _, d := range durations {
		if _, err := s.StartSession(c.ID, nil, at); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := s.StopSession(at.Add(d)); err != nil {
			t.Fatalf("stop: %v", err)
		}
		at = at.Add(d + time.Minute)
	}
}

func TestSyncDateUploadsAggregate(t *testing.T) {
	s := newTestStore(t)
	seedDay(t, s, "2025-03-10", 90*time.Minute, 20*time.Minute)

	w := &fakeWriter{}
	sy := New(s, w, discardLogger())
	sy.now = func() time.Time { return time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) }

	if err := sy.SyncDate(context.Background(), "2025-03-10"); err != nil {
		t.Fatal(err)
	}

	calls := w.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(calls))
	}
	got := calls[0]
	if got.StatDate != "2025-03-10" {
		t.Fatalf("stat date: got %s", got.StatDate)
	}
	if got.SessionCount != 2 || got.TotalMinutes != 110.0 || got.LongestMinutes != 90.0 {
		t.Fatalf("aggregate: got %+v", got)
	}
	if got.UserID == "" || got.DisplayName == "" {
		t.Fatalf("expected identity fields, got %+v", got)
	}
	if !got.LastSynced.Equal(time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("last synced: got %v", got.LastSynced)
	}
}

func TestSyncDateIdempotent(t *testing.T) {
	s := newTestStore(t)
	seedDay(t, s, "2025-03-10", 30*time.Minute)

	w := &fakeWriter{}
	sy := New(s, w, discardLogger())
	fixed := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	sy.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		if err := sy.SyncDate(context.Background(), "2025-03-10"); err != nil {
			t.Fatal(err)
		}
	}

	calls := w.calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 upserts, got %d", len(calls))
	}
	// Every upsert carries the same full recomputation, so the shared row
	// ends identical regardless of how many times it ran.
	for i := 1; i < len(calls); i++ {
		if calls[i] != calls[0] {
			t.Fatalf("upsert %d differs: %+v vs %+v", i, calls[i], calls[0])
		}
	}
}

func TestSyncDateSkipsEmptyDay(t *testing.T) {
	s := newTestStore(t)

	w := &fakeWriter{}
	sy := New(s, w, discardLogger())

	if err := sy.SyncDate(context.Background(), "2025-03-10"); err != nil {
		t.Fatal(err)
	}
	if len(w.calls()) != 0 {
		t.Fatal("expected no upsert for an empty day")
	}
}

func TestSyncDateWriteFailure(t *testing.T) {
	s := newTestStore(t)
	seedDay(t, s, "2025-03-10", 30*time.Minute)

	boom := errors.New("connection reset")
	w := &fakeWriter{err: boom}
	sy := New(s, w, discardLogger())

	err := sy.SyncDate(context.Background(), "2025-03-10")
	if !errors.Is(err, boom) {
		t.Fatalf("expected write error surfaced, got %v", err)
	}

	// Local data untouched: clearing the fault and retrying succeeds with
	// the same aggregate.
	w.err = nil
	if err := sy.SyncDate(context.Background(), "2025-03-10"); err != nil {
		t.Fatal(err)
	}
	calls := w.calls()
	if len(calls) != 1 || calls[0].TotalMinutes != 30.0 {
		t.Fatalf("expected retry to upload aggregate, got %+v", calls)
	}
}

func TestSyncDateMalformedDate(t *testing.T) {
	s := newTestStore(t)
	w := &fakeWriter{}
	sy := New(s, w, discardLogger())

	if err := sy.SyncDate(context.Background(), "bogus"); err == nil {
		t.Fatal("expected error for malformed date")
	}
	if len(w.calls()) != 0 {
		t.Fatal("expected no upsert")
	}
}

func TestSyncDatePicksUpRenamedUser(t *testing.T) {
	s := newTestStore(t)
	seedDay(t, s, "2025-03-10", 30*time.Minute)

	w := &fakeWriter{}
	sy := New(s, w, discardLogger())

	if err := sy.SyncDate(context.Background(), "2025-03-10"); err != nil {
		t.Fatal(err)
	}
	s.SetSetting(store.SettingDisplayName, "alice")
	if err := sy.SyncDate(context.Background(), "2025-03-10"); err != nil {
		t.Fatal(err)
	}

	calls := w.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(calls))
	}
	if calls[1].DisplayName != "alice" {
		t.Fatalf("expected renamed user in second upsert, got %q", calls[1].DisplayName)
	}
	if calls[0].UserID != calls[1].UserID {
		t.Fatal("expected stable user id across renames")
	}
}
