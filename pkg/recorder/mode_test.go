package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name   string
		from   Mode
		event  Event
		want   Mode
		wantOK bool
	}{
		{"record from empty", ModeIdleEmpty, EventRecord, ModeRecording, true},
		{"save from empty rejected", ModeIdleEmpty, EventSave, "", false},
		{"stop while recording", ModeRecording, EventStop, ModeIdleUnsaved, true},
		{"record while recording rejected", ModeRecording, EventRecord, "", false},
		{"save unsaved", ModeIdleUnsaved, EventSave, ModeIdleSaved, true},
		{"record discards unsaved", ModeIdleUnsaved, EventRecord, ModeRecording, true},
		{"replay unsaved", ModeIdleUnsaved, EventReplay, ModeReplayingUnsaved, true},
		{"save twice rejected", ModeIdleSaved, EventSave, "", false},
		{"replay saved", ModeIdleSaved, EventReplay, ModeReplayingSaved, true},
		{"stop replay unsaved", ModeReplayingUnsaved, EventStopReplay, ModeIdleUnsaved, true},
		{"stop replay saved", ModeReplayingSaved, EventStop, ModeIdleSaved, true},
		{"record during replay rejected", ModeReplayingSaved, EventRecord, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Next(tt.from, tt.event)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModePredicates(t *testing.T) {
	assert.True(t, ModeIdleEmpty.IsIdle())
	assert.True(t, ModeIdleSaved.IsIdle())
	assert.False(t, ModeRecording.IsIdle())
	assert.True(t, ModeReplayingUnsaved.IsReplaying())
	assert.False(t, ModeIdleUnsaved.IsReplaying())
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent("stop_replay")
	assert.NoError(t, err)
	assert.Equal(t, EventStopReplay, ev)

	_, err = ParseEvent("rewind")
	assert.Error(t, err)
}
