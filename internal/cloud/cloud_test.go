package cloud

import (
	"context"
	"errors"
	"testing"
	"time"
)

// A nil client is the documented "not configured" state; every operation
// must refuse cleanly instead of panicking.
func TestNilClientNotReady(t *testing.T) {
	var c *Client

	if c.Ready() {
		t.Fatal("nil client must not be ready")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}

	ctx := context.Background()

	if err := c.UpsertDailyStat(ctx, DailyStat{}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("upsert: expected ErrNotReady, got %v", err)
	}
	if _, err := c.ListStatsByDate(ctx, "2025-03-10"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("list by date: expected ErrNotReady, got %v", err)
	}
	if _, err := c.ListAllStats(ctx); !errors.Is(err, ErrNotReady) {
		t.Fatalf("list all: expected ErrNotReady, got %v", err)
	}
	if err := c.UpsertPresence(ctx, "u1", "alice", time.Now()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("presence upsert: expected ErrNotReady, got %v", err)
	}
	if _, err := c.ListPresence(ctx); !errors.Is(err, ErrNotReady) {
		t.Fatalf("presence list: expected ErrNotReady, got %v", err)
	}
}

func TestDialUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network dial in short mode")
	}

	_, err := Dial("postgres://127.0.0.1:1/worklog?sslmode=disable&connect_timeout=1")
	if err == nil {
		t.Fatal("expected dial to an unreachable host to fail")
	}
}
