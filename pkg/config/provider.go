package config

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"flightrecorder/pkg/store"
)

// Provider defines the interface for accessing unified configuration.
type Provider interface {
	SimProvider(ctx context.Context) string

	// Trigger thresholds, re-read on every tick.
	TriggerSettings(ctx context.Context) TriggerConfig
	SetTriggerSettings(ctx context.Context, tc TriggerConfig) error

	RecordingRetention(ctx context.Context) time.Duration
	SetRecordingRetention(ctx context.Context, d time.Duration) error

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

func (p *UnifiedProvider) SimProvider(ctx context.Context) string {
	fallback := p.base.Sim.Provider
	if fallback == "" {
		fallback = "mock"
	}
	return p.getString(ctx, KeySimSource, fallback)
}

// TriggerSettings overlays persisted overrides on the file configuration.
func (p *UnifiedProvider) TriggerSettings(ctx context.Context) TriggerConfig {
	b := p.base.Trigger
	return TriggerConfig{
		FlightInitiatedAltitude:   p.getFloat64(ctx, KeyFlightInitiatedAltitude, b.FlightInitiatedAltitude),
		LandingTransitionAltitude: p.getFloat64(ctx, KeyLandingTransitionAltitude, b.LandingTransitionAltitude),
		LandingVSThreshold:        p.getFloat64(ctx, KeyLandingVSThreshold, b.LandingVSThreshold),
		RecordTakeoff:             p.getBool(ctx, KeyRecordTakeoff, b.RecordTakeoff),
		RecordLanding:             p.getBool(ctx, KeyRecordLanding, b.RecordLanding),
		DepartureGate:             p.getString(ctx, KeyDepartureGate, b.DepartureGate),
		VSFilterAlpha:             p.getFloat64(ctx, KeyVSFilterAlpha, b.VSFilterAlpha),
	}
}

// SetTriggerSettings validates and persists all trigger values.
func (p *UnifiedProvider) SetTriggerSettings(ctx context.Context, tc TriggerConfig) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	if p.store == nil {
		return fmt.Errorf("no state store configured")
	}
	values := map[string]string{
		KeyFlightInitiatedAltitude:   formatFloat(tc.FlightInitiatedAltitude),
		KeyLandingTransitionAltitude: formatFloat(tc.LandingTransitionAltitude),
		KeyLandingVSThreshold:        formatFloat(tc.LandingVSThreshold),
		KeyRecordTakeoff:             strconv.FormatBool(tc.RecordTakeoff),
		KeyRecordLanding:             strconv.FormatBool(tc.RecordLanding),
		KeyDepartureGate:             tc.DepartureGate,
		KeyVSFilterAlpha:             formatFloat(tc.VSFilterAlpha),
	}
	for k, v := range values {
		if err := p.store.SetState(ctx, k, v); err != nil {
			return fmt.Errorf("failed to persist %s: %w", k, err)
		}
	}
	return nil
}

func (p *UnifiedProvider) RecordingRetention(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyRecordingRetention, time.Duration(p.base.Recorder.Retention))
}

func (p *UnifiedProvider) SetRecordingRetention(ctx context.Context, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("retention must not be negative")
	}
	if p.store == nil {
		return fmt.Errorf("no state store configured")
	}
	return p.store.SetState(ctx, KeyRecordingRetention, d.String())
}

// --- Helpers ---

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getBool(ctx context.Context, key string, fallback bool) bool {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val == "true"
		}
	}
	return fallback
}

func (p *UnifiedProvider) getDuration(ctx context.Context, key string, fallback time.Duration) time.Duration {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if dur, err := ParseDuration(val); err == nil {
				return dur
			}
		}
	}
	return fallback
}
