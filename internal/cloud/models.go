package cloud

import "time"

// DailyStat is one row of the shared leaderboard_stats table, keyed by
// (user_id, stat_date). Numeric fields are always a full recomputation of
// that user's day, never an incremental delta.
type DailyStat struct {
	UserID         string
	DisplayName    string
	StatDate       string // 2006-01-02 in the fixed stat zone
	SessionCount   int
	TotalMinutes   float64
	LongestMinutes float64
	LastSynced     time.Time
}

// Presence is one row of the shared online_status table, keyed by user_id
// and overwritten on every heartbeat.
type Presence struct {
	UserID       string
	DisplayName  string
	LastActiveAt time.Time
}
