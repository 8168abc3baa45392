// Package presence reports this user's heartbeat to the shared store and
// decides who counts as online.
package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// OnlineWindow is how fresh a heartbeat must be to count as online.
const OnlineWindow = 60 * time.Second

// DefaultInterval is the heartbeat period.
const DefaultInterval = 30 * time.Second

// Online reports whether a last-active timestamp is fresh enough. The
// boundary is exclusive: a heartbeat exactly OnlineWindow old is offline.
// Both timestamps are compared as instants, so timezone of either side
// does not matter.
func Online(lastActive, now time.Time) bool {
	return now.Sub(lastActive) < OnlineWindow
}

// HeartbeatWriter is the slice of the shared store the tracker needs.
type HeartbeatWriter interface {
	UpsertPresence(ctx context.Context, userID, displayName string, at time.Time) error
}

// Identity supplies the user id and display name for each heartbeat; the
// display name can change while the tracker runs.
type Identity interface {
	EnsureUserID() (string, error)
	DisplayName() (string, error)
}

// Tracker periodically overwrites this user's presence row. Heartbeats are
// fire-and-forget: a tick that fires while the previous heartbeat is still
// in flight is skipped rather than queued.
type Tracker struct {
	writer   HeartbeatWriter
	identity Identity
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	busy sync.Mutex
}

func NewTracker(w HeartbeatWriter, id Identity, logger *slog.Logger, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{
		writer:   w,
		identity: id,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Start sends heartbeats until the context is cancelled. Failures are
// logged and the next tick simply tries again.
func (t *Tracker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info("presence tracker started", "interval", t.interval)

	t.beat(ctx)
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("presence tracker stopped")
			return
		case <-ticker.C:
			t.beat(ctx)
		}
	}
}

func (t *Tracker) beat(ctx context.Context) {
	if !t.busy.TryLock() {
		t.logger.Debug("heartbeat still in flight, skipping tick")
		return
	}
	defer t.busy.Unlock()

	if err := t.RunOnce(ctx); err != nil {
		t.logger.Warn("heartbeat failed", "error", err)
	}
}

// RunOnce sends a single heartbeat.
func (t *Tracker) RunOnce(ctx context.Context) error {
	userID, err := t.identity.EnsureUserID()
	if err != nil {
		return err
	}
	displayName, err := t.identity.DisplayName()
	if err != nil {
		return err
	}
	return t.writer.UpsertPresence(ctx, userID, displayName, t.now().UTC())
}
