package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"flightrecorder/pkg/recorder"
)

// RecorderControl is the part of the recorder the API drives.
type RecorderControl interface {
	Status() recorder.Status
	Submit(cmd recorder.Command)
	Replay(ctx context.Context, id string) error
	StopReplay()
}

// RecorderHandler exposes manual recorder commands.
type RecorderHandler struct {
	rec RecorderControl
}

func NewRecorderHandler(rec RecorderControl) *RecorderHandler {
	return &RecorderHandler{rec: rec}
}

// CommandRequest is the body of POST /api/recorder/command.
type CommandRequest struct {
	Event string `json:"event"`
	Label string `json:"label,omitempty"`
}

// HandleStatus returns the recorder snapshot.
func (h *RecorderHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.rec.Status())
}

// HandleCommand queues an event. Acceptance only means the command was
// queued; an event the current mode rejects is logged by the recorder.
func (h *RecorderHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ev, err := recorder.ParseEvent(req.Event)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch ev {
	case recorder.EventReplay:
		if err := h.rec.Replay(r.Context(), ""); err != nil {
			writeRecorderError(w, err)
			return
		}
	case recorder.EventStopReplay:
		h.rec.StopReplay()
	default:
		label := req.Label
		if ev == recorder.EventRecord && label == "" {
			label = "manual"
		}
		h.rec.Submit(recorder.Command{Event: ev, Label: label})
	}

	slog.Info("API: recorder command queued", "event", ev)
	writeJSON(w, http.StatusAccepted, h.rec.Status())
}

func writeRecorderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recorder.ErrNoRecording):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, recorder.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
