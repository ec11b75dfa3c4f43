package trigger

import (
	"flightrecorder/pkg/recorder"
	"flightrecorder/pkg/sim"
)

// Input is what a guard sees: the current sample (nil when absent) and the
// filtered vertical speed in ft/min. Recording reports whether a Record was
// issued for the current leg; Departing and Arriving leave through the
// Stop/Save phases only when it is set.
type Input struct {
	Sample     *sim.Telemetry
	FilteredVS float64
	Recording  bool
}

type rule struct {
	guard func(in Input, s Settings) bool
	next  func(in Input, s Settings) Phase
	event recorder.Event // empty for silent transitions
}

func always(in Input, _ Settings) bool { return in.Sample != nil }

func to(p Phase) func(Input, Settings) Phase {
	return func(Input, Settings) Phase { return p }
}

// rules is the ground-roll automaton. Every phase has exactly one rule.
var rules = map[Phase]rule{
	Stopped: {
		guard: func(in Input, _ Settings) bool {
			return in.Sample != nil && in.Sample.GroundSpeed > taxiSpeed && in.Sample.IsOnGround
		},
		next: func(_ Input, s Settings) Phase {
			if s.RecordTakeoff {
				return StartDepartureRecording
			}
			return Departing
		},
	},
	StartDepartureRecording: {guard: always, next: to(Departing), event: recorder.EventRecord},
	Departing: {
		guard: func(in Input, s Settings) bool {
			return in.Sample != nil && in.Sample.AltitudeAGL > s.LandingTransitionAltitude
		},
		next: func(in Input, _ Settings) Phase {
			if in.Recording {
				return StopDepartureRecording
			}
			return Flying
		},
	},
	StopDepartureRecording: {guard: always, next: to(SaveDepartureRecording), event: recorder.EventStop},
	SaveDepartureRecording: {guard: always, next: to(Flying), event: recorder.EventSave},
	Flying: {
		guard: func(in Input, s Settings) bool {
			return in.Sample != nil &&
				in.Sample.AltitudeAGL < s.LandingTransitionAltitude &&
				in.FilteredVS <= s.LandingVSThreshold
		},
		next: func(_ Input, s Settings) Phase {
			if s.RecordLanding {
				return StartArrivalRecording
			}
			return Arriving
		},
	},
	StartArrivalRecording: {guard: always, next: to(Arriving), event: recorder.EventRecord},
	Arriving: {
		guard: func(in Input, _ Settings) bool {
			return in.Sample != nil && in.Sample.GroundSpeed == 0 && in.Sample.IsOnGround
		},
		next: func(in Input, _ Settings) Phase {
			if in.Recording {
				return StopArrivalRecording
			}
			return Landed
		},
	},
	StopArrivalRecording: {guard: always, next: to(SaveArrivalRecording), event: recorder.EventStop},
	SaveArrivalRecording: {guard: always, next: to(Landed), event: recorder.EventSave},
	Landed:               {guard: always, next: to(Stopped)},
}

// altitudeDeparture replaces the Stopped rule under GateAltitude.
var altitudeDeparture = rule{
	guard: func(in Input, s Settings) bool {
		return in.Sample != nil && in.Sample.AltitudeAGL >= s.FlightInitiatedAltitude
	},
	next: to(Flying),
}

func ruleFor(p Phase, s Settings) (rule, bool) {
	if p == Stopped && s.DepartureGate == GateAltitude {
		return altitudeDeparture, true
	}
	r, ok := rules[p]
	return r, ok
}

// Step evaluates one phase against one input. It returns the next phase and
// the event to emit, if any. A false guard keeps the phase and emits nothing.
func Step(p Phase, in Input, s Settings) (Phase, recorder.Event, bool) {
	r, ok := ruleFor(p, s)
	if !ok || !r.guard(in, s) {
		return p, "", false
	}
	next := r.next(in, s)
	if next == p || r.event == "" {
		return next, "", false
	}
	return next, r.event, true
}
