package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "flightrecorder.yaml")

	tests := []struct {
		name          string
		setup         func()
		validate      func(*testing.T, *Config)
		checkFile     func(*testing.T)
		expectedError bool
	}{
		{
			name:  "NewFile_Defaults",
			setup: func() {},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Trigger.FlightInitiatedAltitude != 2500 {
					t.Errorf("expected flight initiated altitude 2500, got %v", cfg.Trigger.FlightInitiatedAltitude)
				}
				if cfg.Trigger.LandingVSThreshold != -250 {
					t.Errorf("expected landing VS threshold -250, got %v", cfg.Trigger.LandingVSThreshold)
				}
				if cfg.Trigger.DepartureGate != GateGroundRoll {
					t.Errorf("expected departure gate %s, got %s", GateGroundRoll, cfg.Trigger.DepartureGate)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "landing_transition_altitude: 1500") {
					t.Error("config file missing default values")
				}
				if !strings.Contains(string(content), "# Options: ground_roll, altitude") {
					t.Error("config file missing departure gate comment")
				}
			},
		},
		{
			name: "ExistingFile_Override",
			setup: func() {
				err := os.WriteFile(configPath, []byte("trigger:\n  record_takeoff: false\n  departure_gate: altitude\nrecorder:\n  retention: 2w\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Trigger.RecordTakeoff {
					t.Error("expected record_takeoff false")
				}
				if !cfg.Trigger.RecordLanding {
					t.Error("expected record_landing default true to survive merge")
				}
				if cfg.Trigger.DepartureGate != GateAltitude {
					t.Errorf("expected departure gate altitude, got %s", cfg.Trigger.DepartureGate)
				}
				if time.Duration(cfg.Recorder.Retention) != 2*Week {
					t.Errorf("expected retention 2w, got %v", time.Duration(cfg.Recorder.Retention))
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if strings.Contains(string(content), "landing_transition_altitude") {
					t.Error("existing config file should not be rewritten")
				}
			},
		},
		{
			name: "Env_Override",
			setup: func() {
				t.Setenv("FLIGHTRECORDER_DB_PATH", "/tmp/override.db")
				t.Setenv("FLIGHTRECORDER_ADDR", "0.0.0.0:9000")
				err := os.WriteFile(configPath, []byte("db:\n  path: ./data/file.db\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.DB.Path != "/tmp/override.db" {
					t.Errorf("expected env DB path, got %s", cfg.DB.Path)
				}
				if cfg.Server.Address != "0.0.0.0:9000" {
					t.Errorf("expected env address, got %s", cfg.Server.Address)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if strings.Contains(string(content), "override.db") {
					t.Error("environment override should NOT be persisted to config file")
				}
			},
		},
		{
			name: "Invalid_YAML",
			setup: func() {
				err := os.WriteFile(configPath, []byte("trigger: [not a map]"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Alpha",
			setup: func() {
				err := os.WriteFile(configPath, []byte("trigger:\n  vs_filter_alpha: 1.5\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
		{
			name: "Invalid_Gate",
			setup: func() {
				err := os.WriteFile(configPath, []byte("trigger:\n  departure_gate: sideways\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Remove(configPath)
			tt.setup()

			cfg, err := Load(configPath)
			if (err != nil) != tt.expectedError {
				t.Fatalf("Load() error = %v, expectedError %v", err, tt.expectedError)
			}
			if err == nil {
				tt.validate(t, cfg)
				tt.checkFile(t)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults", func(*Config) {}, false},
		{"Alpha one", func(c *Config) { c.Trigger.VSFilterAlpha = 1 }, false},
		{"Alpha zero", func(c *Config) { c.Trigger.VSFilterAlpha = 0 }, true},
		{"Zero tick", func(c *Config) { c.Ticker.TelemetryLoop = 0 }, true},
		{"Unknown provider", func(c *Config) { c.Sim.Provider = "xplane" }, true},
		{"Negative replay speed", func(c *Config) { c.Recorder.ReplaySpeed = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateDefault(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "default_config.yaml")

	if err := GenerateDefault(configPath); err != nil {
		t.Fatalf("GenerateDefault() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("GenerateDefault() did not create file")
	}

	// Running again should not fail
	if err := GenerateDefault(configPath); err != nil {
		t.Errorf("GenerateDefault() error on second run = %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() of generated file failed: %v", err)
	}
	if cfg.Recorder.MaxFrames != DefaultConfig().Recorder.MaxFrames {
		t.Errorf("generated file does not round-trip: max_frames = %d", cfg.Recorder.MaxFrames)
	}
}
