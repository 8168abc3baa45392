package cloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotReady is returned when an operation is attempted on an
// unconfigured handle.
var ErrNotReady = errors.New("shared store not configured")

// UpsertDailyStat writes the full aggregate for one (user, stat date)
// bucket as a single conditional statement. Existing numeric fields are
// replaced, never added to, which makes retries of the same sync a no-op.
func (c *Client) UpsertDailyStat(ctx context.Context, stat DailyStat) error {
	if !c.Ready() {
		return ErrNotReady
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO leaderboard_stats
		     (user_id, stat_date, display_name, session_count, total_duration_minutes, longest_session_duration_minutes, last_synced)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, stat_date) DO UPDATE SET
		     display_name = EXCLUDED.display_name,
		     session_count = EXCLUDED.session_count,
		     total_duration_minutes = EXCLUDED.total_duration_minutes,
		     longest_session_duration_minutes = EXCLUDED.longest_session_duration_minutes,
		     last_synced = EXCLUDED.last_synced`,
		stat.UserID, stat.StatDate, stat.DisplayName,
		stat.SessionCount, stat.TotalMinutes, stat.LongestMinutes,
		stat.LastSynced.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert daily stat %s/%s: %w", stat.UserID, stat.StatDate, err)
	}
	return nil
}

// ListStatsByDate returns all leaderboard rows for one stat date.
func (c *Client) ListStatsByDate(ctx context.Context, date string) ([]DailyStat, error) {
	if !c.Ready() {
		return nil, ErrNotReady
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT user_id, stat_date, display_name, session_count, total_duration_minutes, longest_session_duration_minutes, last_synced
		 FROM leaderboard_stats WHERE stat_date = $1`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("list stats for %s: %w", date, err)
	}
	defer rows.Close()
	return collectStats(rows)
}

// ListAllStats returns every leaderboard row; the caller merges per user
// for all-time rankings.
func (c *Client) ListAllStats(ctx context.Context) ([]DailyStat, error) {
	if !c.Ready() {
		return nil, ErrNotReady
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT user_id, stat_date, display_name, session_count, total_duration_minutes, longest_session_duration_minutes, last_synced
		 FROM leaderboard_stats`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all stats: %w", err)
	}
	defer rows.Close()
	return collectStats(rows)
}

// collectStats validates rows at the deserialization boundary. A row with
// missing required fields fails the whole read closed instead of leaking
// undefined values into aggregation or sorting.
func collectStats(rows *sql.Rows) ([]DailyStat, error) {
	var stats []DailyStat
	for rows.Next() {
		var st DailyStat
		var userID, statDate, displayName sql.NullString
		var lastSynced sql.NullTime

		if err := rows.Scan(&userID, &statDate, &displayName,
			&st.SessionCount, &st.TotalMinutes, &st.LongestMinutes, &lastSynced); err != nil {
			return nil, fmt.Errorf("scan stat row: %w", err)
		}
		if !userID.Valid || userID.String == "" || !statDate.Valid || statDate.String == "" {
			return nil, fmt.Errorf("stat row missing user_id or stat_date")
		}
		st.UserID = userID.String
		st.StatDate = statDate.String
		st.DisplayName = displayName.String
		if lastSynced.Valid {
			st.LastSynced = lastSynced.Time
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
