package stats

import (
	"math"

	"github.com/sadopc/worklog/internal/store"
)

// Daily holds the aggregate for one (user, stat date) bucket. Values are
// always a full recomputation from the day's sessions, never a delta.
type Daily struct {
	SessionCount   int
	TotalMinutes   float64
	LongestMinutes float64
}

// Empty reports whether the bucket has no sessions. Empty buckets are
// skipped by the syncer rather than upserted with zeros.
func (d Daily) Empty() bool {
	return d.SessionCount == 0
}

// Aggregate reduces the closed sessions of one day bucket to a Daily.
// Totals are accumulated in whole seconds and converted to minutes once,
// so any permutation of the input yields an identical result.
func Aggregate(sessions []store.Session) Daily {
	var totalSeconds, longestSeconds int64
	count := 0

	for _, s := range sessions {
		if s.Open() {
			continue
		}
		count++
		totalSeconds += s.Duration
		if s.Duration > longestSeconds {
			longestSeconds = s.Duration
		}
	}

	return Daily{
		SessionCount:   count,
		TotalMinutes:   roundMinutes(totalSeconds),
		LongestMinutes: roundMinutes(longestSeconds),
	}
}

// roundMinutes converts seconds to minutes rounded to two decimal places,
// matching the precision stored in the shared leaderboard table.
func roundMinutes(seconds int64) float64 {
	return math.Round(float64(seconds)/60*100) / 100
}
