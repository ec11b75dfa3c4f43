package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"flightrecorder/pkg/config"
	"flightrecorder/pkg/logging"
	"flightrecorder/pkg/sim"
)

// TelemetrySink is an interface for consumers of the high-frequency telemetry stream.
type TelemetrySink interface {
	Update(t *sim.Telemetry)
	UpdateState(s sim.State)
}

// Scheduler manages the central heartbeat. Each tick it reads the sim,
// publishes the sample, runs every TickHandler inline and then fires Jobs.
type Scheduler struct {
	prov     config.Provider
	sim      sim.Client
	sink     TelemetrySink
	handlers []TickHandler
	jobs     []Job

	mu          sync.RWMutex
	publishGate func() bool
}

// NewScheduler creates a new Scheduler. sink may be nil.
func NewScheduler(prov config.Provider, simClient sim.Client, sink TelemetrySink) *Scheduler {
	return &Scheduler{
		prov: prov,
		sim:  simClient,
		sink: sink,
	}
}

// AddHandler registers an inline per-tick handler.
func (s *Scheduler) AddHandler(h TickHandler) {
	s.handlers = append(s.handlers, h)
}

// AddJob registers a job.
func (s *Scheduler) AddJob(j Job) {
	s.jobs = append(s.jobs, j)
}

// SetPublishGate installs a check run before live samples reach the sink.
// While it returns false (e.g. during a replay) the sink is left to others.
func (s *Scheduler) SetPublishGate(gate func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishGate = gate
}

// Start runs the main loop. It blocks until context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	interval := time.Duration(s.prov.AppConfig().Ticker.TelemetryLoop)
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", interval, "handlers", len(s.handlers), "jobs", len(s.jobs))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	simState := s.sim.GetState()
	if s.sink != nil {
		s.sink.UpdateState(simState)
	}

	tel := sim.Sample(ctx, s.sim)

	if tel != nil && s.sink != nil && s.shouldPublish() {
		s.sink.Update(tel)
	}

	// Handlers see every tick, including absent samples.
	for _, h := range s.handlers {
		h.Tick(ctx, tel)
	}

	if tel == nil {
		logging.Trace(slog.Default(), "Scheduler: no sample this tick", "state", simState)
		return
	}

	for _, job := range s.jobs {
		if job.ShouldFire(tel) {
			// Fire and forget
			go job.Run(ctx, tel)
		}
	}
}

func (s *Scheduler) shouldPublish() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publishGate == nil || s.publishGate()
}
