// Package sim provides the telemetry source interface and sample types.
package sim

// State represents the connection and activity state of the simulator.
type State string

const (
	// StateDisconnected indicates no connection to the simulator.
	StateDisconnected State = "disconnected"
	// StateInactive indicates connected but not in active flight (menu/pause).
	StateInactive State = "inactive"
	// StateActive indicates connected and in active flight.
	StateActive State = "active"
)

// ParseState maps a stored or user-supplied value to a State.
// Unknown values map to StateDisconnected.
func ParseState(s string) State {
	switch State(s) {
	case StateActive, StateInactive:
		return State(s)
	}
	return StateDisconnected
}
