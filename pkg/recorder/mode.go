// Package recorder implements the recording state machine that the trigger
// logic drives: it captures telemetry frames, saves them and replays them.
package recorder

import "fmt"

// Mode is the current state of the recorder.
type Mode string

const (
	ModeIdleEmpty        Mode = "idle_empty"
	ModeIdleUnsaved      Mode = "idle_unsaved"
	ModeIdleSaved        Mode = "idle_saved"
	ModeRecording        Mode = "recording"
	ModeReplayingUnsaved Mode = "replaying_unsaved"
	ModeReplayingSaved   Mode = "replaying_saved"
)

// IsReplaying reports whether the mode plays back recorded telemetry.
func (m Mode) IsReplaying() bool {
	return m == ModeReplayingSaved || m == ModeReplayingUnsaved
}

// IsIdle reports whether the mode is one of the idle modes.
func (m Mode) IsIdle() bool {
	return m == ModeIdleEmpty || m == ModeIdleUnsaved || m == ModeIdleSaved
}

// Event is a command accepted by the recorder.
type Event string

const (
	EventRecord     Event = "record"
	EventStop       Event = "stop"
	EventSave       Event = "save"
	EventReplay     Event = "replay"
	EventStopReplay Event = "stop_replay"
)

// ParseEvent validates a user-supplied event name.
func ParseEvent(s string) (Event, error) {
	switch e := Event(s); e {
	case EventRecord, EventStop, EventSave, EventReplay, EventStopReplay:
		return e, nil
	}
	return "", fmt.Errorf("unknown recorder event %q", s)
}

// transitions lists the legal (mode, event) pairs and their target mode.
var transitions = map[Mode]map[Event]Mode{
	ModeIdleEmpty: {
		EventRecord: ModeRecording,
	},
	ModeIdleUnsaved: {
		EventRecord: ModeRecording,
		EventSave:   ModeIdleSaved,
		EventReplay: ModeReplayingUnsaved,
	},
	ModeIdleSaved: {
		EventRecord: ModeRecording,
		EventReplay: ModeReplayingSaved,
	},
	ModeRecording: {
		EventStop: ModeIdleUnsaved,
	},
	ModeReplayingUnsaved: {
		EventStop:       ModeIdleUnsaved,
		EventStopReplay: ModeIdleUnsaved,
	},
	ModeReplayingSaved: {
		EventStop:       ModeIdleSaved,
		EventStopReplay: ModeIdleSaved,
	},
}

// Next returns the mode reached from m on ev, or false when ev is not
// accepted in m.
func Next(m Mode, ev Event) (Mode, bool) {
	to, ok := transitions[m][ev]
	return to, ok
}
