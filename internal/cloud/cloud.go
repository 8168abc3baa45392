// Package cloud is the handle to the shared Postgres store that powers the
// cross-user leaderboard and online presence. The handle is constructed once
// at startup and passed into the components that need it; a nil *Client is
// the documented "not configured" state and every caller must check Ready
// before use.
package cloud

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type Client struct {
	db *sql.DB
}

// Dial opens a connection to the shared store and verifies it is reachable.
func Dial(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open shared store: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping shared store: %w", err)
	}
	return &Client{db: db}, nil
}

// Ready reports whether the handle can be used. A nil client (shared store
// unconfigured or unreachable at startup) is not ready; leaderboard and
// presence features degrade to empty, local tracking is unaffected.
func (c *Client) Ready() bool {
	return c != nil && c.db != nil
}

func (c *Client) Close() error {
	if !c.Ready() {
		return nil
	}
	return c.db.Close()
}
