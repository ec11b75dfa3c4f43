package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"flightrecorder/pkg/version"
)

// NewServer creates and configures the HTTP server.
// recH and recs may be nil when the recorder is disabled.
func NewServer(addr string, tel *TelemetryHandler, cfg *ConfigHandler, recH *RecorderHandler, recs *RecordingsHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health and version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Telemetry
	mux.HandleFunc("GET /api/telemetry", tel.handleTelemetry)
	mux.HandleFunc("GET /api/telemetry/ws", tel.handleStream)

	// 3. Trigger configuration
	mux.HandleFunc("GET /api/config/trigger", cfg.HandleGetTrigger)
	mux.HandleFunc("PUT /api/config/trigger", cfg.HandleSetTrigger)

	// 4. Logs
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)
	mux.HandleFunc("GET /api/log/events", handleEventLog)

	// 5. Recorder
	if recH != nil {
		mux.HandleFunc("GET /api/recorder", recH.HandleStatus)
		mux.HandleFunc("POST /api/recorder/command", recH.HandleCommand)
	}
	if recs != nil {
		mux.HandleFunc("GET /api/recordings", recs.HandleList)
		mux.HandleFunc("GET /api/recordings/{id}", recs.HandleGet)
		mux.HandleFunc("DELETE /api/recordings/{id}", recs.HandleDelete)
		mux.HandleFunc("POST /api/recordings/{id}/replay", recs.HandleReplay)
	}

	// 6. Shutdown
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the telemetry stream sets its own per-message deadlines.
		IdleTimeout: 60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
