package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"flightrecorder/pkg/config"
	"flightrecorder/pkg/recorder"
	"flightrecorder/pkg/sim"
	"flightrecorder/pkg/trigger"
)

// Recorder is the part of the recorder the trigger drives.
type Recorder interface {
	Mode() recorder.Mode
	Submit(cmd recorder.Command)
}

// TriggerStatus is a snapshot of the automaton for the API.
type TriggerStatus struct {
	Phase       trigger.Phase  `json:"phase"`
	FilteredVS  float64        `json:"filtered_vs_fpm"`
	Suspended   bool           `json:"suspended"`
	LastEvent   recorder.Event `json:"last_event,omitempty"`
	LastEventAt time.Time      `json:"last_event_at,omitempty"`
}

// TriggerJob feeds every tick into the phase automaton and forwards the
// resulting events to the recorder.
type TriggerJob struct {
	BaseJob
	prov  config.Provider
	logic *trigger.Logic
	rec   Recorder

	mu     sync.RWMutex
	status TriggerStatus
}

// NewTriggerJob creates a TriggerJob. The filter coefficient is taken from
// the provider once, at construction.
func NewTriggerJob(ctx context.Context, prov config.Provider, rec Recorder) *TriggerJob {
	tc := prov.TriggerSettings(ctx)
	return &TriggerJob{
		BaseJob: NewBaseJob("Trigger"),
		prov:    prov,
		logic:   trigger.NewLogic(rec, trigger.WithFilterAlpha(tc.VSFilterAlpha)),
		rec:     rec,
	}
}

// SettingsFromConfig converts the configured thresholds to automaton settings.
func SettingsFromConfig(tc config.TriggerConfig) trigger.Settings {
	return trigger.Settings{
		FlightInitiatedAltitude:   tc.FlightInitiatedAltitude,
		LandingTransitionAltitude: tc.LandingTransitionAltitude,
		LandingVSThreshold:        tc.LandingVSThreshold,
		RecordTakeoff:             tc.RecordTakeoff,
		RecordLanding:             tc.RecordLanding,
		DepartureGate:             tc.DepartureGate,
	}
}

// Tick runs one evaluation. Settings are re-read every tick so API changes
// apply from the next sample on.
func (j *TriggerJob) Tick(ctx context.Context, t *sim.Telemetry) {
	settings := SettingsFromConfig(j.prov.TriggerSettings(ctx))
	res := j.logic.Process(t, settings)

	if res.Changed() {
		slog.Info("Trigger: phase changed", "from", res.Previous, "to", res.Phase)
	}
	if res.HasEvent {
		j.rec.Submit(recorder.Command{Event: res.Event, Label: res.Previous.Label()})
		slog.Info("Trigger: recorder event issued", "event", res.Event, "phase", res.Phase)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.status.Phase = res.Phase
	j.status.FilteredVS = j.logic.FilteredVerticalSpeed()
	j.status.Suspended = res.Suspended
	if res.HasEvent {
		j.status.LastEvent = res.Event
		j.status.LastEventAt = time.Now()
	}
}

// Status returns the latest automaton snapshot.
func (j *TriggerJob) Status() TriggerStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// CaptureHandler forwards live samples to the recorder buffer.
type CaptureHandler struct {
	BaseJob
	rec interface{ Capture(t *sim.Telemetry) }
}

// NewCaptureHandler creates a CaptureHandler for rec.
func NewCaptureHandler(rec interface{ Capture(t *sim.Telemetry) }) *CaptureHandler {
	return &CaptureHandler{BaseJob: NewBaseJob("Capture"), rec: rec}
}

func (h *CaptureHandler) Tick(_ context.Context, t *sim.Telemetry) {
	h.rec.Capture(t)
}
