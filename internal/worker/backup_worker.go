// Package worker contains the background backup process. It listens for
// ledger change events and periodically dumps the full snapshot to disk,
// so a broken import or a bad migration can always be rolled back from a
// recent file.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"haushalt/internal/amqp"
	"haushalt/internal/core"
)

// SnapshotSource provides the current full ledger state.
type SnapshotSource interface {
	Export(ctx context.Context) (core.Snapshot, error)
}

// EventSource delivers ledger change notifications until ctx is done.
type EventSource interface {
	ConsumeLedgerEvents(ctx context.Context, handler func(*amqp.LedgerEvent) error) error
}

type BackupWorker struct {
	source   SnapshotSource
	events   EventSource // nil runs timer-only backups
	dir      string
	interval time.Duration
	keep     int
}

func NewBackupWorker(source SnapshotSource, events EventSource, dir string, interval time.Duration, keep int) *BackupWorker {
	if keep <= 0 {
		keep = 10
	}
	return &BackupWorker{
		source:   source,
		events:   events,
		dir:      dir,
		interval: interval,
		keep:     keep,
	}
}

// Run blocks until ctx is cancelled. A timer loop writes periodic
// backups; when an event source is configured, every ledger change
// triggers an extra one. Backup failures are logged, not fatal: a
// hiccup writing one file must not take the worker down.
func (w *BackupWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.WriteBackup(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic backup failed", "error", err)
				}
			}
		}
	})

	if w.events != nil {
		g.Go(func() error {
			return w.events.ConsumeLedgerEvents(ctx, func(ev *amqp.LedgerEvent) error {
				slog.InfoContext(ctx, "Ledger changed, writing backup",
					"kind", ev.Kind, "entry_id", ev.EntryID)
				return w.WriteBackup(ctx)
			})
		})
	}

	return g.Wait()
}

// WriteBackup dumps the current snapshot to a timestamped file and
// prunes old ones. The write goes through a temp file and rename so a
// crash mid-write never leaves a truncated backup behind.
func (w *BackupWorker) WriteBackup(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	snap, err := w.source.Export(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("budget_data_%s.json", time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize backup: %w", err)
	}

	slog.InfoContext(ctx, "Backup written", "path", path, "bytes", len(data))
	return w.prune()
}

// prune keeps the newest w.keep backups. Names embed a sortable UTC
// timestamp, so lexical order is chronological order.
func (w *BackupWorker) prune() error {
	matches, err := filepath.Glob(filepath.Join(w.dir, "budget_data_*.json"))
	if err != nil {
		return err
	}
	if len(matches) <= w.keep {
		return nil
	}
	for _, stale := range matches[:len(matches)-w.keep] {
		if err := os.Remove(stale); err != nil {
			slog.Warn("Failed to prune old backup", "path", stale, "error", err)
		}
	}
	return nil
}
