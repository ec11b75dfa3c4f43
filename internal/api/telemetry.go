package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"flightrecorder/pkg/core"
	"flightrecorder/pkg/sim"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 30 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// TriggerStatusSource reports the automaton state shown next to telemetry.
type TriggerStatusSource interface {
	Status() core.TriggerStatus
}

// TelemetryResponse is the API response structure.
type TelemetryResponse struct {
	sim.Telemetry
	SimState         string              `json:"SimState"`
	VerticalSpeedFPM float64             `json:"VerticalSpeedFPM"`
	Trigger          *core.TriggerStatus `json:"Trigger,omitempty"`
}

// TelemetryHandler keeps the latest sample for polling clients and fans it
// out to websocket subscribers.
type TelemetryHandler struct {
	mu        sync.RWMutex
	telemetry sim.Telemetry
	simState  sim.State
	trigger   TriggerStatusSource

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}

	upgrader websocket.Upgrader
}

func NewTelemetryHandler() *TelemetryHandler {
	return &TelemetryHandler{
		simState: sim.StateDisconnected,
		subs:     make(map[chan struct{}]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Local overlay clients connect from file:// and other ports.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// SetTriggerSource attaches the automaton status to responses.
func (h *TelemetryHandler) SetTriggerSource(src TriggerStatusSource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trigger = src
}

// Update implements core.TelemetrySink and recorder.FrameSink.
func (h *TelemetryHandler) Update(t *sim.Telemetry) {
	h.mu.Lock()
	h.telemetry = *t
	h.mu.Unlock()
	h.notify()
}

// UpdateState updates the simulator state.
func (h *TelemetryHandler) UpdateState(s sim.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.simState = s
}

func (h *TelemetryHandler) snapshot() TelemetryResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := TelemetryResponse{
		Telemetry:        h.telemetry,
		SimState:         string(h.simState),
		VerticalSpeedFPM: h.telemetry.VerticalSpeedFPM(),
	}
	if h.trigger != nil {
		st := h.trigger.Status()
		resp.Trigger = &st
	}
	return resp
}

func (h *TelemetryHandler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.snapshot()); err != nil {
		slog.Error("Failed to encode telemetry response", "error", err)
	}
}

// notify wakes every subscriber. A subscriber that has not consumed the
// previous wake-up just sees the newer sample.
func (h *TelemetryHandler) notify() {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *TelemetryHandler) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	h.subMu.Lock()
	h.subs[ch] = struct{}{}
	h.subMu.Unlock()
	return ch
}

func (h *TelemetryHandler) unsubscribe(ch chan struct{}) {
	h.subMu.Lock()
	delete(h.subs, ch)
	h.subMu.Unlock()
}

// subscribers returns the number of connected stream clients.
func (h *TelemetryHandler) subscribers() int {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return len(h.subs)
}

// handleStream pushes a TelemetryResponse on every update.
func (h *TelemetryHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Telemetry stream: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// Reader: only needed to process pongs and notice the client leaving.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	// Send the current state straight away.
	if err := h.writeSnapshot(conn); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ch:
			if err := h.writeSnapshot(conn); err != nil {
				slog.Debug("Telemetry stream: write failed", "error", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *TelemetryHandler) writeSnapshot(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(h.snapshot())
}
