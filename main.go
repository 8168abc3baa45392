package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/worklog/internal/cloud"
	"github.com/sadopc/worklog/internal/config"
	"github.com/sadopc/worklog/internal/leaderboard"
	"github.com/sadopc/worklog/internal/logging"
	"github.com/sadopc/worklog/internal/presence"
	"github.com/sadopc/worklog/internal/store"
	"github.com/sadopc/worklog/internal/syncer"
	"github.com/sadopc/worklog/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logPath, err := logging.DefaultLogPath()
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.SetupFile(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return err
	}
	s, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	userID, err := s.EnsureUserID()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cloud sync is optional: without a configured DSN the app tracks
	// locally and the leaderboard view renders as disabled.
	var (
		client       *cloud.Client
		sync         *syncer.Syncer
		engine       *leaderboard.Engine
		syncInterval string
	)

	cfgPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		logger.Info("cloud sync not configured, running local-only")
	case err != nil:
		return err
	default:
		client, err = cloud.Dial(cfg.CloudDSN)
		if err != nil {
			logger.Error("cloud connection failed, running local-only", "error", err)
		} else {
			defer client.Close()
			sync = syncer.New(s, client, logger)
			engine = leaderboard.NewEngine(client, logger)
			syncInterval = cfg.SyncInterval.String()

			go sync.Start(ctx, cfg.SyncInterval)
			go presence.NewTracker(client, s, logger, cfg.HeartbeatInterval).Start(ctx)
		}
	}

	app := tui.NewApp(s, sync, engine, userID, syncInterval)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
