package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"flightrecorder/pkg/config"
	"flightrecorder/pkg/sim"
	"flightrecorder/pkg/store"
)

// NewRecordingPruneJob returns a TimeJob that deletes saved recordings older
// than the configured retention. A zero retention disables pruning.
func NewRecordingPruneJob(prov config.Provider, st store.RecordingStore, interval time.Duration) *TimeJob {
	return NewTimeJob("RecordingPrune", interval, func(ctx context.Context, _ sim.Telemetry) {
		retention := prov.RecordingRetention(ctx)
		if retention <= 0 {
			return
		}
		cutoff := time.Now().Add(-retention)
		n, err := st.PruneRecordings(ctx, cutoff)
		if err != nil {
			slog.Error("RecordingPrune: failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("RecordingPrune: deleted old recordings", "count", n, "older_than", humanize.Time(cutoff))
		}
	})
}
