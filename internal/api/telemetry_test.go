package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"flightrecorder/pkg/core"
	"flightrecorder/pkg/sim"
	"flightrecorder/pkg/trigger"
)

type stubTrigger struct{ st core.TriggerStatus }

func (s stubTrigger) Status() core.TriggerStatus { return s.st }

func TestTelemetryHandler_HandleTelemetry(t *testing.T) {
	defaultTel := sim.Telemetry{
		Latitude:      51.5,
		Longitude:     -0.1,
		AltitudeMSL:   1000,
		VerticalSpeed: -5,
		IsOnGround:    false,
	}

	tests := []struct {
		name     string
		setup    func(*TelemetryHandler)
		validate func(*testing.T, TelemetryResponse)
	}{
		{
			name: "Success_WithData",
			setup: func(h *TelemetryHandler) {
				h.Update(&defaultTel)
				h.UpdateState(sim.StateActive)
			},
			validate: func(t *testing.T, resp TelemetryResponse) {
				if resp.Latitude != defaultTel.Latitude {
					t.Errorf("got Lat %v, want %v", resp.Latitude, defaultTel.Latitude)
				}
				if resp.VerticalSpeedFPM != -300 {
					t.Errorf("got VerticalSpeedFPM %v, want -300", resp.VerticalSpeedFPM)
				}
				if resp.SimState != "active" {
					t.Errorf("got SimState %q, want active", resp.SimState)
				}
				if resp.Trigger != nil {
					t.Error("Trigger should be omitted without a source")
				}
			},
		},
		{
			name:  "Success_EmptyInitial",
			setup: func(h *TelemetryHandler) {},
			validate: func(t *testing.T, resp TelemetryResponse) {
				if resp.Latitude != 0 {
					t.Errorf("got Lat %v, want 0", resp.Latitude)
				}
				if resp.SimState != "disconnected" {
					t.Errorf("got SimState %q, want disconnected", resp.SimState)
				}
			},
		},
		{
			name: "Success_WithTrigger",
			setup: func(h *TelemetryHandler) {
				h.SetTriggerSource(stubTrigger{core.TriggerStatus{Phase: trigger.Flying, FilteredVS: -120}})
			},
			validate: func(t *testing.T, resp TelemetryResponse) {
				if resp.Trigger == nil {
					t.Fatal("Trigger missing")
				}
				if resp.Trigger.Phase != trigger.Flying {
					t.Errorf("got phase %v, want flying", resp.Trigger.Phase)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTelemetryHandler()
			tt.setup(handler)

			req := httptest.NewRequest("GET", "/api/telemetry", http.NoBody)
			w := httptest.NewRecorder()
			handler.handleTelemetry(w, req)

			resp := w.Result()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("StatusCode: got %v, want 200", resp.StatusCode)
			}

			var got TelemetryResponse
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			tt.validate(t, got)
		})
	}
}

func TestTelemetryHandler_Stream(t *testing.T) {
	handler := NewTelemetryHandler()
	srv := httptest.NewServer(http.HandlerFunc(handler.handleStream))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// Initial snapshot
	var first TelemetryResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial: %v", err)
	}

	// Wait until the server side has registered the subscriber.
	deadline := time.Now().Add(time.Second)
	for handler.subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	handler.Update(&sim.Telemetry{Latitude: 48.1, AltitudeAGL: 1200})

	var next TelemetryResponse
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if next.Latitude != 48.1 || next.AltitudeAGL != 1200 {
		t.Errorf("got %+v, want updated sample", next.Telemetry)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for handler.subscribers() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := handler.subscribers(); n != 0 {
		t.Errorf("subscribers after close = %d, want 0", n)
	}
}
