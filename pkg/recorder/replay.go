package recorder

import (
	"context"
	"time"

	"flightrecorder/pkg/model"
)

// startPlaybackLocked plays frames to the sink on a separate goroutine.
// When playback runs to completion it queues EventStopReplay. Caller holds mu.
func (r *Recorder) startPlaybackLocked(parent context.Context, frames []model.Frame) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	r.replayGen++
	gen := r.replayGen
	r.replayCancel = cancel
	r.replayDone = done

	speed := r.cfg.ReplaySpeed
	sink := r.sink

	go func() {
		defer close(done)
		start := time.Now()
		for i := range frames {
			f := &frames[i]
			due := start.Add(time.Duration(float64(f.Offset) / speed))
			if wait := time.Until(due); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			} else if ctx.Err() != nil {
				return
			}
			if sink != nil {
				t := toTelemetry(f, time.Now())
				sink.Update(&t)
			}
		}
		r.logger.Info("Recorder: replay finished", "frames", len(frames))
		r.Submit(Command{Event: EventStopReplay, replayGen: gen})
	}()
}

// stopPlaybackLocked cancels a running playback and waits for it to exit.
// Caller holds mu; the playback goroutine never takes mu.
func (r *Recorder) stopPlaybackLocked() {
	if r.replayCancel == nil {
		return
	}
	r.replayCancel()
	<-r.replayDone
	r.replayCancel = nil
	r.replayDone = nil
}

func (r *Recorder) stopPlayback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopPlaybackLocked()
}
