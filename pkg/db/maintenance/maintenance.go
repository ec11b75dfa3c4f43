// Package maintenance runs the startup housekeeping on the recordings database.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flightrecorder/pkg/db"
	"flightrecorder/pkg/store"
)

// lastRunStateKey holds the RFC3339 time of the last completed maintenance.
const lastRunStateKey = "maintenance.last_run"

// Run prunes recordings older than retention and records the run in the
// state store. A zero retention keeps everything. It blocks until completion.
func Run(ctx context.Context, s store.Store, d *db.DB, retention time.Duration) error {
	slog.Info("Starting database maintenance...")

	if last, ok := s.GetState(ctx, lastRunStateKey); ok {
		slog.Debug("Previous maintenance", "at", last)
	}

	if err := pruneRecordings(ctx, s, retention); err != nil {
		slog.Error("Recording pruning failed", "error", err)
		// We don't stop startup for pruning failure, but we log it.
	}

	if _, err := d.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		slog.Warn("PRAGMA optimize failed", "error", err)
	}

	if err := s.SetState(ctx, lastRunStateKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}
	return nil
}

func pruneRecordings(ctx context.Context, s store.RecordingStore, retention time.Duration) error {
	if retention <= 0 {
		return nil
	}
	n, err := s.PruneRecordings(ctx, time.Now().Add(-retention))
	if err != nil {
		return err
	}
	slog.Info("Recording pruning completed", "deleted", n, "retention", retention)
	return nil
}
