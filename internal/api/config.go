package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"flightrecorder/pkg/config"
)

// ConfigHandler handles trigger configuration requests.
type ConfigHandler struct {
	cfgProv config.Provider
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(cfg config.Provider) *ConfigHandler {
	return &ConfigHandler{cfgProv: cfg}
}

// TriggerConfigResponse represents the trigger config API response.
type TriggerConfigResponse struct {
	SimSource                 string  `json:"sim_source"`
	FlightInitiatedAltitude   float64 `json:"flight_initiated_altitude"`
	LandingTransitionAltitude float64 `json:"landing_transition_altitude"`
	LandingVSThreshold        float64 `json:"landing_vs_threshold"`
	RecordTakeoff             bool    `json:"record_takeoff"`
	RecordLanding             bool    `json:"record_landing"`
	DepartureGate             string  `json:"departure_gate"`
	VSFilterAlpha             float64 `json:"vs_filter_alpha"`
	Retention                 string  `json:"retention"`
}

// TriggerConfigRequest is a partial update. Pointers tell false/zero from missing.
type TriggerConfigRequest struct {
	FlightInitiatedAltitude   *float64 `json:"flight_initiated_altitude,omitempty"`
	LandingTransitionAltitude *float64 `json:"landing_transition_altitude,omitempty"`
	LandingVSThreshold        *float64 `json:"landing_vs_threshold,omitempty"`
	RecordTakeoff             *bool    `json:"record_takeoff,omitempty"`
	RecordLanding             *bool    `json:"record_landing,omitempty"`
	DepartureGate             string   `json:"departure_gate,omitempty"`
	VSFilterAlpha             *float64 `json:"vs_filter_alpha,omitempty"`
	Retention                 string   `json:"retention,omitempty"`
}

// HandleGetTrigger returns the effective trigger settings.
func (h *ConfigHandler) HandleGetTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tc := h.cfgProv.TriggerSettings(ctx)
	writeJSON(w, http.StatusOK, TriggerConfigResponse{
		SimSource:                 h.cfgProv.SimProvider(ctx),
		FlightInitiatedAltitude:   tc.FlightInitiatedAltitude,
		LandingTransitionAltitude: tc.LandingTransitionAltitude,
		LandingVSThreshold:        tc.LandingVSThreshold,
		RecordTakeoff:             tc.RecordTakeoff,
		RecordLanding:             tc.RecordLanding,
		DepartureGate:             tc.DepartureGate,
		VSFilterAlpha:             tc.VSFilterAlpha,
		Retention:                 h.cfgProv.RecordingRetention(ctx).String(),
	})
}

// HandleSetTrigger merges the request over the current settings and persists
// them. Threshold changes apply from the next tick; the filter coefficient
// applies after a restart.
func (h *ConfigHandler) HandleSetTrigger(w http.ResponseWriter, r *http.Request) {
	var req TriggerConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tc := h.cfgProv.TriggerSettings(ctx)
	if req.FlightInitiatedAltitude != nil {
		tc.FlightInitiatedAltitude = *req.FlightInitiatedAltitude
	}
	if req.LandingTransitionAltitude != nil {
		tc.LandingTransitionAltitude = *req.LandingTransitionAltitude
	}
	if req.LandingVSThreshold != nil {
		tc.LandingVSThreshold = *req.LandingVSThreshold
	}
	if req.RecordTakeoff != nil {
		tc.RecordTakeoff = *req.RecordTakeoff
	}
	if req.RecordLanding != nil {
		tc.RecordLanding = *req.RecordLanding
	}
	if req.DepartureGate != "" {
		tc.DepartureGate = req.DepartureGate
	}
	if req.VSFilterAlpha != nil {
		tc.VSFilterAlpha = *req.VSFilterAlpha
	}

	if err := tc.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var retention time.Duration
	if req.Retention != "" {
		d, err := config.ParseDuration(req.Retention)
		if err != nil {
			http.Error(w, "invalid retention: "+err.Error(), http.StatusBadRequest)
			return
		}
		if d < 0 {
			http.Error(w, "invalid retention: must not be negative", http.StatusBadRequest)
			return
		}
		retention = d
	}

	// Everything is validated; nothing is persisted before this point.
	if err := h.cfgProv.SetTriggerSettings(ctx, tc); err != nil {
		slog.Error("Failed to persist trigger settings", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if req.Retention != "" {
		if err := h.cfgProv.SetRecordingRetention(ctx, retention); err != nil {
			slog.Error("Failed to persist recording retention", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	slog.Info("Trigger settings updated", "gate", tc.DepartureGate, "record_takeoff", tc.RecordTakeoff, "record_landing", tc.RecordLanding)

	h.HandleGetTrigger(w, r)
}
