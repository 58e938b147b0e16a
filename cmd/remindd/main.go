package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/feed"
	"github.com/sandeepkv93/remindd/internal/reconcile"
	"github.com/sandeepkv93/remindd/internal/sched"
	"github.com/sandeepkv93/remindd/internal/storage"
	"github.com/sandeepkv93/remindd/internal/suppress"
	"github.com/sandeepkv93/remindd/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "remindd failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())

	log, closeLog, err := newLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := storage.OpenSQLite(cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	engine := sched.NewEngine(cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	reconciler, err := reconcile.New(context.Background(), reconcile.Config{
		Adapter:  engine,
		Store:    store,
		Capacity: cfg.Capacity,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("init reconciler: %w", err)
	}

	policy := suppress.New(store)
	provider := feed.NewFileProvider(cfg.FeedPath, log)

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}

	model := update.NewModelWithRuntime(reconciler, engine, provider, policy, notifier, cfg)
	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// newLogger writes structured logs to the configured file. The terminal is
// owned by the TUI, so an empty path discards logs instead of printing them.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, nil)), func() { _ = f.Close() }, nil
}
