package recorder

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/uber/h3-go/v4"

	"flightrecorder/pkg/model"
	"flightrecorder/pkg/sim"
)

// cellResolution is roughly airport-sized (~5 km² hexagons).
const cellResolution = 7

func toFrame(start time.Time, t *sim.Telemetry) model.Frame {
	ts := t.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return model.Frame{
		Offset:        ts.Sub(start),
		Latitude:      t.Latitude,
		Longitude:     t.Longitude,
		AltitudeMSL:   t.AltitudeMSL,
		AltitudeAGL:   t.AltitudeAGL,
		Heading:       t.Heading,
		GroundSpeed:   t.GroundSpeed,
		VerticalSpeed: t.VerticalSpeed,
		IsOnGround:    t.IsOnGround,
	}
}

// toTelemetry converts a recorded frame back into a sample for playback.
func toTelemetry(f *model.Frame, ts time.Time) sim.Telemetry {
	return sim.Telemetry{
		Latitude:      f.Latitude,
		Longitude:     f.Longitude,
		AltitudeMSL:   f.AltitudeMSL,
		AltitudeAGL:   f.AltitudeAGL,
		Heading:       f.Heading,
		GroundSpeed:   f.GroundSpeed,
		VerticalSpeed: f.VerticalSpeed,
		IsOnGround:    f.IsOnGround,
		Timestamp:     ts,
	}
}

// summarize builds a Recording with a fresh id and derived statistics.
func summarize(trigger string, started, ended time.Time, frames []model.Frame) *model.Recording {
	rec := &model.Recording{
		ID:         uuid.NewString(),
		Trigger:    trigger,
		StartedAt:  started,
		EndedAt:    ended,
		FrameCount: len(frames),
		Frames:     frames,
	}
	if len(frames) == 0 {
		return rec
	}

	track := make(orb.LineString, 0, len(frames))
	for i := range frames {
		f := &frames[i]
		track = append(track, orb.Point{f.Longitude, f.Latitude})
		if f.AltitudeMSL > rec.MaxAltitudeFt {
			rec.MaxAltitudeFt = f.AltitudeMSL
		}
	}
	rec.TrackLengthM = geo.LengthHaversine(track)

	first, last := frames[0], frames[len(frames)-1]
	rec.StartCell = cellOf(first.Latitude, first.Longitude)
	rec.EndCell = cellOf(last.Latitude, last.Longitude)
	return rec
}

func cellOf(lat, lon float64) string {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), cellResolution)
	if err != nil {
		slog.Debug("Recorder: H3 cell lookup failed", "lat", lat, "lon", lon, "error", err)
		return ""
	}
	return cell.String()
}
