package cloud

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertPresence records a heartbeat, overwriting the user's previous
// last-active timestamp. Rows are never deleted; staleness decides offline.
func (c *Client) UpsertPresence(ctx context.Context, userID, displayName string, at time.Time) error {
	if !c.Ready() {
		return ErrNotReady
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO online_status (user_id, display_name, last_active_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET
		     display_name = EXCLUDED.display_name,
		     last_active_at = EXCLUDED.last_active_at`,
		userID, displayName, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert presence %s: %w", userID, err)
	}
	return nil
}

// ListPresence returns every presence row. Malformed rows fail the read
// closed, same as leaderboard rows.
func (c *Client) ListPresence(ctx context.Context) ([]Presence, error) {
	if !c.Ready() {
		return nil, ErrNotReady
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT user_id, display_name, last_active_at FROM online_status`,
	)
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	defer rows.Close()

	var records []Presence
	for rows.Next() {
		var p Presence
		var userID, displayName sql.NullString
		var lastActive sql.NullTime

		if err := rows.Scan(&userID, &displayName, &lastActive); err != nil {
			return nil, fmt.Errorf("scan presence row: %w", err)
		}
		if !userID.Valid || userID.String == "" || !lastActive.Valid {
			return nil, fmt.Errorf("presence row missing user_id or last_active_at")
		}
		p.UserID = userID.String
		p.DisplayName = displayName.String
		p.LastActiveAt = lastActive.Time
		records = append(records, p)
	}
	return records, rows.Err()
}
