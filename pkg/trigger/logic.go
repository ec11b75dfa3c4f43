// Package trigger decides from live telemetry when a flight recording
// should start, stop and be saved.
//
// Logic runs a phase automaton once per tick. Raw vertical speed is smoothed
// by an IIR filter and scaled to ft/min before the landing guard compares it.
// Each call returns at most one recorder event; the caller dispatches it.
package trigger

import (
	"log/slog"

	"flightrecorder/pkg/logging"
	"flightrecorder/pkg/recorder"
	"flightrecorder/pkg/sim"
)

// ModeSource reports the recorder's current mode.
type ModeSource interface {
	Mode() recorder.Mode
}

// Result is the outcome of one Process call.
type Result struct {
	Phase     Phase
	Previous  Phase
	Event     recorder.Event
	HasEvent  bool
	Suspended bool // recorder is replaying; nothing was evaluated
}

// Changed reports whether the call moved the automaton to a new phase.
func (r Result) Changed() bool { return r.Phase != r.Previous }

// Logic owns the current phase and the vertical speed filter.
// Process must be called from a single goroutine.
type Logic struct {
	modes      ModeSource
	filter     *IIRFilter
	phase      Phase
	filteredVS float64
	recording  bool // a Record was issued for the current leg
	logger     *slog.Logger
}

// Option configures a Logic.
type Option func(*Logic)

// WithFilterAlpha sets the vertical speed smoothing coefficient.
func WithFilterAlpha(alpha float64) Option {
	return func(l *Logic) {
		l.filter = NewIIRFilter(alpha)
	}
}

// WithInitialPhase starts the automaton somewhere other than Stopped.
// Starting in a recording phase assumes its Record was already issued.
func WithInitialPhase(p Phase) Option {
	return func(l *Logic) {
		l.phase = p
		l.recording = p.recordingLeg()
	}
}

// WithLogger sets the logger used for trace output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logic) {
		l.logger = logger
	}
}

// NewLogic creates a Logic in Stopped. modes may be nil, in which case the
// replay guard never suspends.
func NewLogic(modes ModeSource, opts ...Option) *Logic {
	l := &Logic{
		modes:  modes,
		filter: NewIIRFilter(DefaultFilterAlpha),
		phase:  Stopped,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Process evaluates one sample. A nil sample is an absent reading: no guard
// passes and the filter is not fed.
func (l *Logic) Process(sample *sim.Telemetry, s Settings) Result {
	res := Result{Phase: l.phase, Previous: l.phase}
	if l.modes != nil && l.modes.Mode().IsReplaying() {
		res.Suspended = true
		return res
	}

	if sample != nil {
		l.filteredVS = l.filter.Filter(sample.VerticalSpeed) * 60
	}

	next, ev, ok := Step(l.phase, Input{Sample: sample, FilteredVS: l.filteredVS, Recording: l.recording}, s)
	logging.Trace(l.logger, "Trigger: evaluated", "phase", l.phase, "next", next, "filtered_vs", l.filteredVS)
	l.phase = next
	if ok {
		switch ev {
		case recorder.EventRecord:
			l.recording = true
		case recorder.EventSave:
			l.recording = false
		}
	}

	res.Phase = next
	res.Event = ev
	res.HasEvent = ok
	return res
}

// Current returns the current phase.
func (l *Logic) Current() Phase { return l.phase }

// FilteredVerticalSpeed returns the last filtered vertical speed in ft/min.
func (l *Logic) FilteredVerticalSpeed() float64 { return l.filteredVS }
