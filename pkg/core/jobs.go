package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"flightrecorder/pkg/sim"
)

// Job is a background task fired asynchronously from the tick loop.
// Jobs only see ticks that produced a sample.
type Job interface {
	Name() string
	ShouldFire(t *sim.Telemetry) bool
	Run(ctx context.Context, t *sim.Telemetry)
}

// TickHandler runs inline on every tick, in registration order.
// t is nil when no sample was available.
type TickHandler interface {
	Name() string
	Tick(ctx context.Context, t *sim.Telemetry)
}

// BaseJob provides atomic running state to prevent re-entry.
type BaseJob struct {
	name    string
	running int32 // 1 if running, 0 otherwise
}

func NewBaseJob(name string) BaseJob {
	return BaseJob{name: name}
}

func (b *BaseJob) Name() string {
	return b.name
}

// TryLock attempts to set running to 1. Returns true if successful.
func (b *BaseJob) TryLock() bool {
	return atomic.CompareAndSwapInt32(&b.running, 0, 1)
}

func (b *BaseJob) Unlock() {
	atomic.StoreInt32(&b.running, 0)
}

// TimeJob runs its action at most once per interval. The first tick
// always fires.
type TimeJob struct {
	BaseJob
	interval time.Duration
	action   func(context.Context, sim.Telemetry)

	mu      sync.Mutex
	lastRun time.Time // zero until the first run
}

func NewTimeJob(name string, interval time.Duration, action func(context.Context, sim.Telemetry)) *TimeJob {
	return &TimeJob{
		BaseJob:  NewBaseJob(name),
		interval: interval,
		action:   action,
	}
}

// ShouldFire is called from the tick loop while Run may be active on
// another goroutine.
func (j *TimeJob) ShouldFire(_ *sim.Telemetry) bool {
	if atomic.LoadInt32(&j.running) == 1 {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun.IsZero() || time.Since(j.lastRun) >= j.interval
}

func (j *TimeJob) Run(ctx context.Context, t *sim.Telemetry) {
	if !j.TryLock() {
		return
	}
	defer j.Unlock()

	j.mu.Lock()
	j.lastRun = time.Now()
	j.mu.Unlock()

	j.action(ctx, *t)
}
