package model

import (
	"time"
)

// Frame is one captured telemetry sample inside a recording.
type Frame struct {
	Offset        time.Duration `json:"offset"` // Since recording start
	Latitude      float64       `json:"lat"`
	Longitude     float64       `json:"lon"`
	AltitudeMSL   float64       `json:"alt_msl"`
	AltitudeAGL   float64       `json:"alt_agl"`
	Heading       float64       `json:"heading"`
	GroundSpeed   float64       `json:"gs"`
	VerticalSpeed float64       `json:"vs"` // ft/s
	IsOnGround    bool          `json:"on_ground"`
}

// Recording is a saved flight segment.
type Recording struct {
	ID        string    `json:"id"`
	Trigger   string    `json:"trigger"` // "departure", "arrival", "manual"
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	// Summary (derived from frames at save time)
	FrameCount    int     `json:"frame_count"`
	TrackLengthM  float64 `json:"track_length_m"`
	MaxAltitudeFt float64 `json:"max_altitude_ft"`
	StartCell     string  `json:"start_cell"` // H3 index of first frame
	EndCell       string  `json:"end_cell"`   // H3 index of last frame

	SavedAt time.Time `json:"saved_at"`

	// Frames is empty when loaded as a listing entry.
	Frames []Frame `json:"frames,omitempty"`
}

// Duration returns the wall-clock span of the recording.
func (r *Recording) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// RecorderEvent is a committed recorder state transition, written to the event log.
type RecorderEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Event       string    `json:"event"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	RecordingID string    `json:"recording_id,omitempty"`
	Detail      string    `json:"detail,omitempty"`
}
