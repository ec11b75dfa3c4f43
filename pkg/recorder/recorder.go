package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"flightrecorder/pkg/logging"
	"flightrecorder/pkg/model"
	"flightrecorder/pkg/sim"
	"flightrecorder/pkg/store"
)

var (
	// ErrNoRecording is returned when there is nothing to replay or load.
	ErrNoRecording = errors.New("no recording available")
	// ErrBusy is returned when a load is requested outside the idle modes.
	ErrBusy = errors.New("recorder is busy")
)

// Command is a queued recorder event. Label tags the recording started by
// EventRecord ("departure", "arrival", "manual").
type Command struct {
	Event Event
	Label string

	// replayGen ties an end-of-playback stop to the replay that produced it.
	replayGen int
}

// FrameSink receives replayed samples.
type FrameSink interface {
	Update(t *sim.Telemetry)
}

// Config holds recorder limits.
type Config struct {
	QueueSize   int
	MaxFrames   int
	ReplaySpeed float64
}

// Status is a snapshot of the recorder for the API.
type Status struct {
	Mode          Mode   `json:"mode"`
	Frames        int    `json:"frames"`
	Label         string `json:"label,omitempty"`
	LastSavedID   string `json:"last_saved_id,omitempty"`
	LoadedID      string `json:"loaded_id,omitempty"`
	QueuedEvents  int    `json:"queued_events"`
	DroppedFrames int    `json:"dropped_frames"`
}

// Recorder is the recording state machine. Commands are applied in
// submission order by the goroutine running Run.
type Recorder struct {
	// mode is written under mu and read lock-free by Mode.
	mode atomic.Value

	mu     sync.RWMutex
	label  string
	start  time.Time
	end    time.Time
	frames []model.Frame
	// current is the saved recording loaded for replay, or the last one saved.
	current   *model.Recording
	lastSaved string
	dropped   int
	saving    bool

	cfg    Config
	store  store.RecordingStore
	sink   FrameSink
	queue  chan Command
	logger *slog.Logger

	replayCancel context.CancelFunc
	replayDone   chan struct{}
	replayGen    int
}

// transition describes an applied command for the logs.
type transition struct {
	event       string
	from, to    Mode
	frames      int
	label       string
	recordingID string
}

// New creates a recorder in ModeIdleEmpty. sink may be nil.
func New(cfg Config, st store.RecordingStore, sink FrameSink, logger *slog.Logger) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.ReplaySpeed <= 0 {
		cfg.ReplaySpeed = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		cfg:    cfg,
		store:  st,
		sink:   sink,
		queue:  make(chan Command, cfg.QueueSize),
		logger: logger,
	}
	r.mode.Store(ModeIdleEmpty)
	return r
}

// Mode returns the current recorder mode. It never waits on a save.
func (r *Recorder) Mode() Mode {
	return r.mode.Load().(Mode)
}

// Submit queues a command without blocking. When the queue is full the
// command is dropped and logged.
func (r *Recorder) Submit(cmd Command) {
	select {
	case r.queue <- cmd:
	default:
		r.logger.Warn("Recorder: command queue full, dropping", "event", cmd.Event)
	}
}

// Run applies queued commands until ctx is cancelled.
func (r *Recorder) Run(ctx context.Context) {
	r.logger.Info("Recorder started")
	for {
		select {
		case <-ctx.Done():
			r.stopPlayback()
			r.logger.Info("Recorder stopped")
			return
		case cmd := <-r.queue:
			if err := r.apply(ctx, cmd); err != nil {
				r.logger.Warn("Recorder: command failed", "event", cmd.Event, "mode", r.Mode(), "error", err)
			}
		}
	}
}

// Capture appends a live sample while recording. It is a no-op otherwise.
func (r *Recorder) Capture(t *sim.Telemetry) {
	if t == nil || r.Mode() != ModeRecording {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Mode() != ModeRecording {
		return
	}
	if r.cfg.MaxFrames > 0 && len(r.frames) >= r.cfg.MaxFrames {
		r.dropped++
		if r.dropped == 1 {
			r.logger.Warn("Recorder: frame limit reached, dropping further frames", "max", r.cfg.MaxFrames)
		}
		return
	}
	r.frames = append(r.frames, toFrame(r.start, t))
	r.end = time.Now()
}

// Status returns a snapshot of the recorder.
func (r *Recorder) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := Status{
		Mode:          r.Mode(),
		Frames:        len(r.frames),
		Label:         r.label,
		LastSavedID:   r.lastSaved,
		QueuedEvents:  len(r.queue),
		DroppedFrames: r.dropped,
	}
	if r.current != nil {
		st.LoadedID = r.current.ID
	}
	return st
}

// Load makes a saved recording current so it can be replayed.
// Only allowed in the idle modes, and not while a save is in flight.
func (r *Recorder) Load(ctx context.Context, id string) error {
	rec, err := r.store.GetRecording(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNoRecording, id)
		}
		return fmt.Errorf("failed to load recording: %w", err)
	}

	r.mu.Lock()
	from := r.Mode()
	if !from.IsIdle() || r.saving {
		r.mu.Unlock()
		return ErrBusy
	}
	r.current = rec
	r.frames = nil
	r.mode.Store(ModeIdleSaved)
	label := r.label
	r.mu.Unlock()

	r.logTransition(transition{event: "load", from: from, to: ModeIdleSaved, label: label, recordingID: rec.ID})
	return nil
}

// Replay queues playback of a saved recording, or of the unsaved buffer
// when id is empty. It fails with ErrNoRecording when there is nothing to play.
func (r *Recorder) Replay(ctx context.Context, id string) error {
	if id != "" {
		if err := r.Load(ctx, id); err != nil {
			return err
		}
	}
	r.mu.RLock()
	n := len(r.replayFramesLocked(r.Mode()))
	r.mu.RUnlock()
	if n == 0 {
		return ErrNoRecording
	}
	r.Submit(Command{Event: EventReplay})
	return nil
}

// StopReplay queues the end of a running playback.
func (r *Recorder) StopReplay() {
	r.Submit(Command{Event: EventStopReplay})
}

// replayFramesLocked returns what a replay started in mode m would play.
func (r *Recorder) replayFramesLocked(m Mode) []model.Frame {
	if m == ModeIdleSaved && r.current != nil {
		return r.current.Frames
	}
	return r.frames
}

func (r *Recorder) apply(ctx context.Context, cmd Command) error {
	if cmd.Event == EventSave {
		return r.save(ctx)
	}
	tr, err := r.applyLocked(ctx, cmd)
	if err != nil || tr == nil {
		return err
	}
	r.logTransition(*tr)
	return nil
}

func (r *Recorder) applyLocked(ctx context.Context, cmd Command) (*transition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := r.Mode()
	if cmd.replayGen != 0 && cmd.replayGen != r.replayGen {
		return nil, nil // stale end-of-playback notice
	}
	to, ok := Next(from, cmd.Event)
	if !ok {
		return nil, fmt.Errorf("event %s not accepted in mode %s", cmd.Event, from)
	}

	switch cmd.Event {
	case EventRecord:
		if from == ModeIdleUnsaved {
			r.logger.Warn("Recorder: discarding unsaved recording", "frames", len(r.frames))
		}
		r.label = cmd.Label
		if r.label == "" {
			r.label = "manual"
		}
		r.frames = nil
		r.dropped = 0
		r.current = nil
		r.start = time.Now()
		r.end = r.start

	case EventStop, EventStopReplay:
		if from.IsReplaying() {
			r.stopPlaybackLocked()
		} else {
			r.end = time.Now()
		}

	case EventReplay:
		frames := r.replayFramesLocked(from)
		if len(frames) == 0 {
			return nil, ErrNoRecording
		}
		r.startPlaybackLocked(ctx, frames)
	}

	r.mode.Store(to)
	return &transition{event: string(cmd.Event), from: from, to: to, frames: len(r.frames), label: r.label}, nil
}

// save writes the buffer to the store without holding mu, so Mode, Capture
// and Status stay available during the write. Captured frames are never
// mutated once recording has stopped.
func (r *Recorder) save(ctx context.Context) error {
	r.mu.Lock()
	from := r.Mode()
	to, ok := Next(from, EventSave)
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("event %s not accepted in mode %s", EventSave, from)
	}
	r.saving = true
	label, start, end, frames := r.label, r.start, r.end, r.frames
	r.mu.Unlock()

	rec := summarize(label, start, end, frames)
	err := r.store.SaveRecording(ctx, rec)

	r.mu.Lock()
	r.saving = false
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to save recording: %w", err)
	}
	r.current = rec
	r.lastSaved = rec.ID
	r.mode.Store(to)
	r.mu.Unlock()

	r.logTransition(transition{event: string(EventSave), from: from, to: to, frames: len(frames), label: label, recordingID: rec.ID})
	return nil
}

func (r *Recorder) logTransition(tr transition) {
	r.logger.Info("Recorder: transition", "event", tr.event, "from", tr.from, "to", tr.to, "frames", tr.frames)
	logging.LogEvent(&model.RecorderEvent{
		Event:       tr.event,
		From:        string(tr.from),
		To:          string(tr.to),
		RecordingID: tr.recordingID,
		Detail:      tr.label,
	})
}
