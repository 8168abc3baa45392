// Package leaderboard reconstructs cross-user rankings from the shared
// daily aggregates and presence rows.
package leaderboard

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/worklog/internal/cloud"
	"github.com/sadopc/worklog/internal/presence"
	"github.com/sadopc/worklog/internal/stats"
)

// DateFilter selects which stat dates feed the ranking.
type DateFilter string

const (
	FilterToday     DateFilter = "today"
	FilterYesterday DateFilter = "yesterday"
	FilterAllTime   DateFilter = "all_time"
)

// SortKey selects the ranking metric.
type SortKey string

const (
	SortTotalDuration  SortKey = "total_duration"
	SortLongestSession SortKey = "longest_session"
)

// Row is one ranked leaderboard entry.
type Row struct {
	UserID         string
	DisplayName    string
	SessionCount   int
	TotalMinutes   float64
	LongestMinutes float64
	Online         bool
}

// Source is the slice of the shared store the engine reads.
type Source interface {
	ListStatsByDate(ctx context.Context, date string) ([]cloud.DailyStat, error)
	ListAllStats(ctx context.Context) ([]cloud.DailyStat, error)
	ListPresence(ctx context.Context) ([]cloud.Presence, error)
}

type Engine struct {
	source Source
	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(source Source, logger *slog.Logger) *Engine {
	return &Engine{source: source, logger: logger, now: time.Now}
}

// Query returns the ranked leaderboard for the given filter and sort key.
// It never fails toward the caller: malformed parameters and shared-store
// errors produce an empty result (and a log line), so a view rendering the
// board cannot crash on bad input or a flaky connection.
func (e *Engine) Query(ctx context.Context, filter DateFilter, key SortKey) []Row {
	switch filter {
	case FilterToday, FilterYesterday, FilterAllTime:
	default:
		e.logger.Warn("rejecting malformed leaderboard filter", "filter", string(filter))
		return nil
	}
	switch key {
	case SortTotalDuration, SortLongestSession:
	default:
		e.logger.Warn("rejecting malformed leaderboard sort key", "sort", string(key))
		return nil
	}

	records, err := e.fetch(ctx, filter)
	if err != nil {
		e.logger.Warn("leaderboard fetch failed", "filter", string(filter), "error", err)
		return nil
	}

	rows := mergeByUser(records)
	sortRows(rows, key)
	e.annotateOnline(ctx, rows)
	return rows
}

// fetch resolves the filter to concrete stat dates using the same fixed
// UTC+1 zone the aggregator buckets with. Any other offset here would make
// rows exist but never match the filter.
func (e *Engine) fetch(ctx context.Context, filter DateFilter) ([]cloud.DailyStat, error) {
	switch filter {
	case FilterToday:
		return e.source.ListStatsByDate(ctx, stats.Today(e.now()))
	case FilterYesterday:
		return e.source.ListStatsByDate(ctx, stats.Yesterday(e.now()))
	default:
		return e.source.ListAllStats(ctx)
	}
}

// mergeByUser combines a user's daily rows into one entry: totals and
// session counts sum, longest session is the maximum, and the display name
// is taken from any row (they agree per user).
func mergeByUser(records []cloud.DailyStat) []Row {
	byUser := make(map[string]*Row)
	var order []string

	for _, st := range records {
		row, ok := byUser[st.UserID]
		if !ok {
			row = &Row{UserID: st.UserID, DisplayName: st.DisplayName}
			byUser[st.UserID] = row
			order = append(order, st.UserID)
		}
		row.SessionCount += st.SessionCount
		row.TotalMinutes += st.TotalMinutes
		if st.LongestMinutes > row.LongestMinutes {
			row.LongestMinutes = st.LongestMinutes
		}
	}

	rows := make([]Row, 0, len(order))
	for _, id := range order {
		rows = append(rows, *byUser[id])
	}
	return rows
}

// sortRows orders by the selected metric descending, breaking ties by
// display name ascending case-insensitively so equal metrics still rank
// deterministically.
func sortRows(rows []Row, key SortKey) {
	metric := func(r Row) float64 {
		if key == SortLongestSession {
			return r.LongestMinutes
		}
		return r.TotalMinutes
	}
	sort.SliceStable(rows, func(i, j int) bool {
		mi, mj := metric(rows[i]), metric(rows[j])
		if mi != mj {
			return mi > mj
		}
		return strings.ToLower(rows[i].DisplayName) < strings.ToLower(rows[j].DisplayName)
	})
}

// annotateOnline marks each row whose presence heartbeat is fresh. A
// presence fetch failure leaves every row offline rather than failing the
// whole query; presence is best-effort.
func (e *Engine) annotateOnline(ctx context.Context, rows []Row) {
	records, err := e.source.ListPresence(ctx)
	if err != nil {
		e.logger.Warn("presence fetch failed", "error", err)
		return
	}

	lastActive := make(map[string]time.Time, len(records))
	for _, p := range records {
		lastActive[p.UserID] = p.LastActiveAt
	}

	now := e.now().UTC()
	for i := range rows {
		if at, ok := lastActive[rows[i].UserID]; ok {
			rows[i].Online = presence.Online(at, now)
		}
	}
}
