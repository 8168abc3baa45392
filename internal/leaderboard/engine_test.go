package leaderboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sadopc/worklog/internal/cloud"
	"github.com/sadopc/worklog/internal/stats"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	byDate      map[string][]cloud.DailyStat
	all         []cloud.DailyStat
	presence    []cloud.Presence
	statsErr    error
	presenceErr error

	lastDate string
}

func (f *fakeSource) ListStatsByDate(ctx context.Context, date string) ([]cloud.DailyStat, error) {
	f.lastDate = date
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.byDate[date], nil
}

func (f *fakeSource) ListAllStats(ctx context.Context) ([]cloud.DailyStat, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.all, nil
}

func (f *fakeSource) ListPresence(ctx context.Context) ([]cloud.Presence, error) {
	if f.presenceErr != nil {
		return nil, f.presenceErr
	}
	return f.presence, nil
}

func newTestEngine(src *fakeSource, now time.Time) *Engine {
	e := NewEngine(src, discardLogger())
	e.now = func() time.Time { return now }
	return e
}

func stat(userID, name, date string, count int, total, longest float64) cloud.DailyStat {
	return cloud.DailyStat{
		UserID:         userID,
		DisplayName:    name,
		StatDate:       date,
		SessionCount:   count,
		TotalMinutes:   total,
		LongestMinutes: longest,
	}
}

func TestQueryToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	today := stats.Today(now)

	src := &fakeSource{byDate: map[string][]cloud.DailyStat{
		today: {
			stat("u1", "alice", today, 2, 110, 90),
			stat("u2", "bob", today, 1, 45, 45),
		},
	}}
	e := newTestEngine(src, now)

	rows := e.Query(context.Background(), FilterToday, SortTotalDuration)
	if src.lastDate != today {
		t.Fatalf("expected fetch for %s, got %s", today, src.lastDate)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UserID != "u1" || rows[1].UserID != "u2" {
		t.Fatalf("expected alice ranked first, got %+v", rows)
	}
}

func TestQueryYesterdayDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	e := newTestEngine(src, now)

	e.Query(context.Background(), FilterYesterday, SortTotalDuration)
	if src.lastDate != stats.Yesterday(now) {
		t.Fatalf("expected fetch for %s, got %s", stats.Yesterday(now), src.lastDate)
	}
}

func TestQueryAllTimeMergesPerUser(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{all: []cloud.DailyStat{
		stat("u1", "alice", "2025-03-10", 1, 30, 30),
		stat("u1", "alice", "2025-03-11", 2, 45, 20),
		stat("u2", "bob", "2025-03-10", 1, 60, 60),
	}}
	e := newTestEngine(src, now)

	rows := e.Query(context.Background(), FilterAllTime, SortTotalDuration)
	if len(rows) != 2 {
		t.Fatalf("expected 2 merged rows, got %d", len(rows))
	}

	var alice Row
	for _, r := range rows {
		if r.UserID == "u1" {
			alice = r
		}
	}
	if alice.SessionCount != 3 {
		t.Fatalf("count: expected 3, got %d", alice.SessionCount)
	}
	if alice.TotalMinutes != 75.0 {
		t.Fatalf("total: expected 75, got %v", alice.TotalMinutes)
	}
	if alice.LongestMinutes != 30.0 {
		t.Fatalf("longest: expected max 30, got %v", alice.LongestMinutes)
	}
}

func TestQuerySortByLongest(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	today := stats.Today(now)
	src := &fakeSource{byDate: map[string][]cloud.DailyStat{
		today: {
			stat("u1", "alice", today, 3, 120, 50),
			stat("u2", "bob", today, 1, 90, 90),
		},
	}}
	e := newTestEngine(src, now)

	rows := e.Query(context.Background(), FilterToday, SortLongestSession)
	if rows[0].UserID != "u2" {
		t.Fatalf("expected bob first by longest session, got %+v", rows)
	}
}

func TestQueryTieBreaksByName(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	today := stats.Today(now)
	src := &fakeSource{byDate: map[string][]cloud.DailyStat{
		today: {
			stat("u1", "Carol", today, 1, 60, 60),
			stat("u2", "bob", today, 1, 60, 60),
		},
	}}
	e := newTestEngine(src, now)

	rows := e.Query(context.Background(), FilterToday, SortTotalDuration)
	// Case-insensitive: "bob" sorts before "Carol"
	if rows[0].DisplayName != "bob" || rows[1].DisplayName != "Carol" {
		t.Fatalf("expected bob then Carol, got %+v", rows)
	}
}

func TestQueryMalformedParams(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{byDate: map[string][]cloud.DailyStat{
		stats.Today(now): {stat("u1", "alice", stats.Today(now), 1, 60, 60)},
	}}
	e := newTestEngine(src, now)

	if rows := e.Query(context.Background(), DateFilter("last_week"), SortTotalDuration); rows != nil {
		t.Fatalf("expected nil for malformed filter, got %+v", rows)
	}
	if rows := e.Query(context.Background(), FilterToday, SortKey("alphabetical")); rows != nil {
		t.Fatalf("expected nil for malformed sort key, got %+v", rows)
	}
}

func TestQueryFetchFailure(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{statsErr: errors.New("connection reset")}
	e := newTestEngine(src, now)

	if rows := e.Query(context.Background(), FilterToday, SortTotalDuration); rows != nil {
		t.Fatalf("expected nil on fetch failure, got %+v", rows)
	}
}

func TestQueryAnnotatesOnline(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	today := stats.Today(now)
	src := &fakeSource{
		byDate: map[string][]cloud.DailyStat{
			today: {
				stat("u1", "alice", today, 1, 60, 60),
				stat("u2", "bob", today, 1, 50, 50),
				stat("u3", "carol", today, 1, 40, 40),
			},
		},
		presence: []cloud.Presence{
			{UserID: "u1", LastActiveAt: now.Add(-30 * time.Second)}, // fresh
			{UserID: "u2", LastActiveAt: now.Add(-60 * time.Second)}, // exactly at the window
		},
	}
	e := newTestEngine(src, now)

	rows := e.Query(context.Background(), FilterToday, SortTotalDuration)
	online := map[string]bool{}
	for _, r := range rows {
		online[r.UserID] = r.Online
	}
	if !online["u1"] {
		t.Fatal("expected u1 online")
	}
	if online["u2"] {
		t.Fatal("expected u2 offline at exactly the window boundary")
	}
	if online["u3"] {
		t.Fatal("expected u3 offline with no presence row")
	}
}

func TestQueryPresenceFailureLeavesOffline(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	today := stats.Today(now)
	src := &fakeSource{
		byDate: map[string][]cloud.DailyStat{
			today: {stat("u1", "alice", today, 1, 60, 60)},
		},
		presenceErr: errors.New("connection reset"),
	}
	e := newTestEngine(src, now)

	rows := e.Query(context.Background(), FilterToday, SortTotalDuration)
	if len(rows) != 1 {
		t.Fatalf("expected ranking to survive presence failure, got %d rows", len(rows))
	}
	if rows[0].Online {
		t.Fatal("expected offline when presence is unavailable")
	}
}
