package trigger

import "fmt"

// Phase is one state of the flight-phase automaton.
type Phase int

const (
	Stopped Phase = iota
	StartDepartureRecording
	Departing
	StopDepartureRecording
	SaveDepartureRecording
	Flying
	StartArrivalRecording
	Arriving
	StopArrivalRecording
	SaveArrivalRecording
	Landed
)

var phaseNames = [...]string{
	Stopped:                 "stopped",
	StartDepartureRecording: "start_departure_recording",
	Departing:               "departing",
	StopDepartureRecording:  "stop_departure_recording",
	SaveDepartureRecording:  "save_departure_recording",
	Flying:                  "flying",
	StartArrivalRecording:   "start_arrival_recording",
	Arriving:                "arriving",
	StopArrivalRecording:    "stop_arrival_recording",
	SaveArrivalRecording:    "save_arrival_recording",
	Landed:                  "landed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText renders the phase by name in JSON and logs.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name as produced by MarshalText.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(b))
}

// Label names the leg a recording started in this phase belongs to.
func (p Phase) Label() string {
	switch p {
	case StartDepartureRecording, Departing, StopDepartureRecording, SaveDepartureRecording:
		return "departure"
	case StartArrivalRecording, Arriving, StopArrivalRecording, SaveArrivalRecording:
		return "arrival"
	}
	return ""
}

// recordingLeg reports whether the phase sits between a leg's Record and its Save.
func (p Phase) recordingLeg() bool {
	switch p {
	case StopDepartureRecording, SaveDepartureRecording, StopArrivalRecording, SaveArrivalRecording:
		return true
	}
	return false
}
