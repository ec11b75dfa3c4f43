package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Departure gate variants.
const (
	// GateGroundRoll starts the departure leg on a ground roll above taxi speed.
	GateGroundRoll = "ground_roll"
	// GateAltitude goes from Stopped straight to Flying once the aircraft
	// climbs through FlightInitiatedAltitude. No departure recording.
	GateAltitude = "altitude"
)

// Config holds the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Server   ServerConfig   `yaml:"server"`
	Ticker   TickerConfig   `yaml:"ticker"`
	Sim      SimConfig      `yaml:"sim"`
	Trigger  TriggerConfig  `yaml:"trigger"`
	Recorder RecorderConfig `yaml:"recorder"`
}

// SimConfig holds settings for the simulation connection.
type SimConfig struct {
	Provider string        `yaml:"provider"` // "mock"
	Mock     MockSimConfig `yaml:"mock"`
}

// MockSimConfig holds settings for the scripted mock flight.
type MockSimConfig struct {
	StartLat       float64  `yaml:"start_lat"`
	StartLon       float64  `yaml:"start_lon"`
	StartAlt       float64  `yaml:"start_alt"`
	StartHeading   *float64 `yaml:"start_heading"`
	DurationParked Duration `yaml:"duration_parked"`
	CruiseAltitude float64  `yaml:"cruise_altitude"` // ft AGL
	CruiseDuration Duration `yaml:"cruise_duration"`
	ClimbRate      float64  `yaml:"climb_rate"`   // ft/min
	DescentRate    float64  `yaml:"descent_rate"` // ft/min
}

// TriggerConfig holds the thresholds of the flight-phase detector.
type TriggerConfig struct {
	FlightInitiatedAltitude   float64 `yaml:"flight_initiated_altitude"`   // ft AGL
	LandingTransitionAltitude float64 `yaml:"landing_transition_altitude"` // ft AGL
	LandingVSThreshold        float64 `yaml:"landing_vs_threshold"`        // ft/min, negative
	RecordTakeoff             bool    `yaml:"record_takeoff"`
	RecordLanding             bool    `yaml:"record_landing"`
	DepartureGate             string  `yaml:"departure_gate"`
	VSFilterAlpha             float64 `yaml:"vs_filter_alpha"`
}

// RecorderConfig holds recording buffer and retention settings.
type RecorderConfig struct {
	QueueSize     int      `yaml:"queue_size"`
	MaxFrames     int      `yaml:"max_frames"`
	ReplaySpeed   float64  `yaml:"replay_speed"`
	Retention     Duration `yaml:"retention"` // 0 keeps recordings forever
	PruneInterval Duration `yaml:"prune_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	Events   LogSettings `yaml:"events"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// TickerConfig holds ticker settings.
type TickerConfig struct {
	TelemetryLoop Duration `yaml:"telemetry_loop"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "./logs/events.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/flightrecorder.db",
		},
		Server: ServerConfig{
			Address: "localhost:1921",
		},
		Ticker: TickerConfig{
			TelemetryLoop: Duration(1 * time.Second),
		},
		Sim: SimConfig{
			Provider: "mock",
			Mock: MockSimConfig{
				StartLat:       51.6845,
				StartLon:       14.4234,
				StartAlt:       285.0,
				DurationParked: Duration(30 * time.Second),
				CruiseAltitude: 3000,
				CruiseDuration: Duration(2 * time.Minute),
				ClimbRate:      700,
				DescentRate:    500,
			},
		},
		Trigger: TriggerConfig{
			FlightInitiatedAltitude:   2500,
			LandingTransitionAltitude: 1500,
			LandingVSThreshold:        -250,
			RecordTakeoff:             true,
			RecordLanding:             true,
			DepartureGate:             GateGroundRoll,
			VSFilterAlpha:             0.1,
		},
		Recorder: RecorderConfig{
			QueueSize:     16,
			MaxFrames:     36000, // 10h at 1 Hz
			ReplaySpeed:   1.0,
			Retention:     Duration(30 * Day),
			PruneInterval: Duration(1 * time.Hour),
		},
	}
}

// Validate checks values the rest of the application relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.Ticker.TelemetryLoop <= 0 {
		errs = append(errs, fmt.Errorf("ticker.telemetry_loop must be positive"))
	}
	if err := c.Trigger.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Recorder.ReplaySpeed < 0 {
		errs = append(errs, fmt.Errorf("recorder.replay_speed must not be negative"))
	}
	if c.Sim.Provider != "mock" {
		errs = append(errs, fmt.Errorf("unknown sim.provider %q", c.Sim.Provider))
	}
	return errors.Join(errs...)
}

// Validate checks the trigger thresholds.
func (t *TriggerConfig) Validate() error {
	if t.VSFilterAlpha <= 0 || t.VSFilterAlpha > 1 {
		return fmt.Errorf("trigger.vs_filter_alpha must be in (0,1], got %v", t.VSFilterAlpha)
	}
	if t.DepartureGate != GateGroundRoll && t.DepartureGate != GateAltitude {
		return fmt.Errorf("unknown trigger.departure_gate %q", t.DepartureGate)
	}
	return nil
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	// Env overrides (never saved back to disk)
	if p := os.Getenv("FLIGHTRECORDER_DB_PATH"); p != "" {
		cfg.DB.Path = p
	}
	if addr := os.Getenv("FLIGHTRECORDER_ADDR"); addr != "" {
		cfg.Server.Address = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Flight Recorder Configuration
# ----------------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Altitudes in feet, vertical speeds in feet per minute

`)
	data = append(header, data...)

	reGate := regexp.MustCompile(`(?m)^(\s+)departure_gate:`)
	data = reGate.ReplaceAll(data, []byte("${1}# Options: ground_roll, altitude\n${1}departure_gate:"))

	reRetention := regexp.MustCompile(`(?m)^(\s+)retention:`)
	data = reRetention.ReplaceAll(data, []byte("${1}# 0s keeps recordings forever\n${1}retention:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
