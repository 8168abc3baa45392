package stats

import (
	"math/rand"
	"testing"
	"time"

	"github.com/sadopc/worklog/internal/store"
)

func closed(start time.Time, durationSecs int64) store.Session {
	end := start.Add(time.Duration(durationSecs) * time.Second)
	return store.Session{
		StartTime: start,
		EndTime:   &end,
		Duration:  durationSecs,
	}
}

// ============================================================
// Day buckets
// ============================================================

func TestStatDateUsesFixedOffset(t *testing.T) {
	// 23:30 UTC is already 00:30 the next day at UTC+1
	late := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	if got := StatDate(late); got != "2025-03-11" {
		t.Fatalf("expected 2025-03-11, got %s", got)
	}

	// 22:59 UTC is still the same day at UTC+1
	early := time.Date(2025, 3, 10, 22, 59, 0, 0, time.UTC)
	if got := StatDate(early); got != "2025-03-10" {
		t.Fatalf("expected 2025-03-10, got %s", got)
	}
}

func TestStatDateIgnoresWallClockZone(t *testing.T) {
	// The same instant in different zones buckets identically
	instant := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	tokyo := instant.In(time.FixedZone("UTC+9", 9*3600))
	if StatDate(instant) != StatDate(tokyo) {
		t.Fatal("expected identical bucket regardless of representation zone")
	}
}

func TestTodayYesterdayDaysAgo(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := Today(now); got != "2025-03-10" {
		t.Fatalf("today: got %s", got)
	}
	if got := Yesterday(now); got != "2025-03-09" {
		t.Fatalf("yesterday: got %s", got)
	}
	if got := DaysAgo(now, 0); got != Today(now) {
		t.Fatalf("days ago 0: got %s", got)
	}
	if got := DaysAgo(now, 7); got != "2025-03-03" {
		t.Fatalf("days ago 7: got %s", got)
	}
}

func TestDayRange(t *testing.T) {
	from, to, err := DayRange("2025-03-10")
	if err != nil {
		t.Fatal(err)
	}

	// The bucket starts at 2025-03-09 23:00 UTC (midnight at UTC+1)
	wantFrom := time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Fatalf("from: expected %v, got %v", wantFrom, from)
	}
	if !to.Equal(wantFrom.Add(24 * time.Hour)) {
		t.Fatalf("to: expected %v, got %v", wantFrom.Add(24*time.Hour), to)
	}

	if _, _, err := DayRange("not-a-date"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestDayRangeRoundTrips(t *testing.T) {
	from, to, err := DayRange("2025-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if StatDate(from) != "2025-03-10" {
		t.Fatalf("start of range buckets to %s", StatDate(from))
	}
	if StatDate(to.Add(-time.Second)) != "2025-03-10" {
		t.Fatalf("end of range buckets to %s", StatDate(to.Add(-time.Second)))
	}
	if StatDate(to) != "2025-03-11" {
		t.Fatalf("upper bound should open the next bucket, got %s", StatDate(to))
	}
}

// ============================================================
// Aggregation
// ============================================================

func TestAggregate(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	sessions := []store.Session{
		closed(day.Add(9*time.Hour), 90*60),  // 09:00, 90 min
		closed(day.Add(13*time.Hour), 20*60), // 13:00, 20 min
	}

	got := Aggregate(sessions)
	if got.SessionCount != 2 {
		t.Fatalf("count: expected 2, got %d", got.SessionCount)
	}
	if got.TotalMinutes != 110.0 {
		t.Fatalf("total: expected 110, got %v", got.TotalMinutes)
	}
	if got.LongestMinutes != 90.0 {
		t.Fatalf("longest: expected 90, got %v", got.LongestMinutes)
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	if !got.Empty() {
		t.Fatalf("expected empty aggregate, got %+v", got)
	}
}

func TestAggregateSkipsOpenSessions(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	sessions := []store.Session{
		closed(day.Add(9*time.Hour), 600),
		{StartTime: day.Add(11 * time.Hour)}, // still running
	}

	got := Aggregate(sessions)
	if got.SessionCount != 1 {
		t.Fatalf("expected open session skipped, got count %d", got.SessionCount)
	}
}

func TestAggregateRounding(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	// 100 seconds = 1.666... minutes, rounds to 1.67
	got := Aggregate([]store.Session{closed(day, 100)})
	if got.TotalMinutes != 1.67 {
		t.Fatalf("expected 1.67, got %v", got.TotalMinutes)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	var sessions []store.Session
	for i := 0; i < 50; i++ {
		sessions = append(sessions, closed(day.Add(time.Duration(i)*time.Minute), int64(i*7+1)))
	}

	want := Aggregate(sessions)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]store.Session, len(sessions))
		copy(shuffled, sessions)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := Aggregate(shuffled)
		if got != want {
			t.Fatalf("trial %d: expected %+v, got %+v", trial, want, got)
		}
	}
}
