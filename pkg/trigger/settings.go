package trigger

import "flightrecorder/pkg/config"

// Departure gate variants, as configured.
const (
	GateGroundRoll = config.GateGroundRoll
	GateAltitude   = config.GateAltitude
)

// DefaultFilterAlpha smooths raw vertical speed over roughly ten samples.
const DefaultFilterAlpha = 0.1

// taxiSpeed is the ground speed (kts) above which a roll counts as a departure.
const taxiSpeed = 10

// Settings are the thresholds read on every evaluation.
type Settings struct {
	FlightInitiatedAltitude   float64 // ft AGL
	LandingTransitionAltitude float64 // ft AGL
	LandingVSThreshold        float64 // ft/min
	RecordTakeoff             bool
	RecordLanding             bool
	DepartureGate             string
}

// DefaultSettings returns the stock thresholds with both legs recorded.
func DefaultSettings() Settings {
	return Settings{
		FlightInitiatedAltitude:   2500,
		LandingTransitionAltitude: 1500,
		LandingVSThreshold:        -250,
		RecordTakeoff:             true,
		RecordLanding:             true,
		DepartureGate:             GateGroundRoll,
	}
}
