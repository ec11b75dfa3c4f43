package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flightrecorder/pkg/config"
)

func TestDefaultSettingsMatchConfig(t *testing.T) {
	tc := config.DefaultConfig().Trigger
	s := DefaultSettings()

	assert.Equal(t, tc.FlightInitiatedAltitude, s.FlightInitiatedAltitude)
	assert.Equal(t, tc.LandingTransitionAltitude, s.LandingTransitionAltitude)
	assert.Equal(t, tc.LandingVSThreshold, s.LandingVSThreshold)
	assert.Equal(t, tc.RecordTakeoff, s.RecordTakeoff)
	assert.Equal(t, tc.RecordLanding, s.RecordLanding)
	assert.Equal(t, tc.DepartureGate, s.DepartureGate)
	assert.Equal(t, tc.VSFilterAlpha, DefaultFilterAlpha)

	// Every configurable gate selects a distinct rule set.
	for _, gate := range []string{config.GateGroundRoll, config.GateAltitude} {
		tc.DepartureGate = gate
		assert.NoError(t, tc.Validate(), gate)
	}
	assert.NotEqual(t, GateGroundRoll, GateAltitude)
}
