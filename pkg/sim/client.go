package sim

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConnected is returned when a client action requires a connection.
	ErrNotConnected = errors.New("simulator not connected")
)

// Client defines the interface for reading aircraft telemetry from a simulator.
type Client interface {
	// GetTelemetry returns the current state of the aircraft.
	GetTelemetry(ctx context.Context) (Telemetry, error)
	// GetState returns the current simulator connection/activity state.
	GetState() State
	// Close cleans up resources associated with the client.
	Close() error
}

// Telemetry represents one aircraft position sample, taken once per sim tick.
type Telemetry struct {
	Latitude      float64 // Degrees
	Longitude     float64 // Degrees
	AltitudeMSL   float64 // Feet MSL
	AltitudeAGL   float64 // Feet above ground
	Heading       float64 // Degrees True
	GroundSpeed   float64 // Knots
	VerticalSpeed float64 // Feet per second, instantaneous
	IsOnGround    bool

	Timestamp time.Time
}

// VerticalSpeedFPM returns the raw vertical speed in feet per minute.
func (t *Telemetry) VerticalSpeedFPM() float64 {
	return t.VerticalSpeed * 60
}

// Sample reads the current telemetry from c and returns nil when no sample
// is available this tick (inactive sim or read failure).
func Sample(ctx context.Context, c Client) *Telemetry {
	if c.GetState() != StateActive {
		return nil
	}
	tel, err := c.GetTelemetry(ctx)
	if err != nil {
		return nil
	}
	return &tel
}
