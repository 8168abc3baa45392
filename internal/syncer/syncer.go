// Package syncer pushes locally recomputed daily aggregates into the
// shared leaderboard table.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/worklog/internal/cloud"
	"github.com/sadopc/worklog/internal/stats"
	"github.com/sadopc/worklog/internal/store"
)

// StatWriter is the slice of the shared store the syncer needs.
type StatWriter interface {
	UpsertDailyStat(ctx context.Context, stat cloud.DailyStat) error
}

// Syncer recomputes one day's aggregate from the local store and replaces
// the shared row for that (user, date) bucket. Replacing instead of
// incrementing makes every sync idempotent: retries and duplicated calls
// leave the row identical to a single successful call.
type Syncer struct {
	store  *store.Store
	writer StatWriter
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*sync.Mutex

	cycle sync.Mutex // overlap guard for periodic cycles
}

func New(st *store.Store, w StatWriter, logger *slog.Logger) *Syncer {
	return &Syncer{
		store:   st,
		writer:  w,
		logger:  logger,
		now:     time.Now,
		buckets: make(map[string]*sync.Mutex),
	}
}

// SyncDate recomputes and uploads the aggregate for one stat date.
// Concurrent calls for the same (user, date) bucket are serialized so a
// stale recomputation can never overwrite a newer one mid-flight. A day
// with no closed sessions is skipped entirely rather than upserted with
// zeros. On failure the local data is untouched and the next periodic
// cycle retries.
func (s *Syncer) SyncDate(ctx context.Context, date string) error {
	userID, err := s.store.EnsureUserID()
	if err != nil {
		return fmt.Errorf("sync %s: %w", date, err)
	}

	lock := s.bucketLock(userID + "|" + date)
	lock.Lock()
	defer lock.Unlock()

	from, to, err := stats.DayRange(date)
	if err != nil {
		return fmt.Errorf("sync %s: %w", date, err)
	}

	sessions, err := s.store.QuerySessions(from, to)
	if err != nil {
		return fmt.Errorf("sync %s: %w", date, err)
	}

	daily := stats.Aggregate(sessions)
	if daily.Empty() {
		s.logger.Debug("no sessions for bucket, skipping sync", "stat_date", date)
		return nil
	}

	displayName, err := s.store.DisplayName()
	if err != nil {
		return fmt.Errorf("sync %s: %w", date, err)
	}

	stat := cloud.DailyStat{
		UserID:         userID,
		DisplayName:    displayName,
		StatDate:       date,
		SessionCount:   daily.SessionCount,
		TotalMinutes:   daily.TotalMinutes,
		LongestMinutes: daily.LongestMinutes,
		LastSynced:     s.now().UTC(),
	}
	if err := s.writer.UpsertDailyStat(ctx, stat); err != nil {
		return fmt.Errorf("sync %s: %w", date, err)
	}

	s.logger.Info("synced daily stats",
		"stat_date", date,
		"session_count", daily.SessionCount,
		"total_minutes", daily.TotalMinutes,
		"longest_minutes", daily.LongestMinutes,
	)
	return nil
}

// SyncToday syncs the current day bucket.
func (s *Syncer) SyncToday(ctx context.Context) error {
	return s.SyncDate(ctx, stats.Today(s.now()))
}

// Start runs a sync cycle on a fixed interval until the context is
// cancelled. A cycle that fires while the previous one is still in flight
// is skipped, not queued. Errors are logged and retried next tick; they
// never surface to local session tracking.
func (s *Syncer) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("sync runner started", "interval", interval)

	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync runner stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Syncer) runCycle(ctx context.Context) {
	if !s.cycle.TryLock() {
		s.logger.Debug("sync cycle still running, skipping tick")
		return
	}
	defer s.cycle.Unlock()

	if err := s.SyncToday(ctx); err != nil {
		s.logger.Error("sync cycle failed, will retry next cycle", "error", err)
	}
}

func (s *Syncer) bucketLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.buckets[key]
	if !ok {
		lock = &sync.Mutex{}
		s.buckets[key] = lock
	}
	return lock
}
