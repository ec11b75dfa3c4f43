// Package probe runs startup checks and decides whether the application may start.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a probe that sets no Timeout of its own.
const DefaultTimeout = 5 * time.Second

// CheckFunc returns nil if the check passes.
type CheckFunc func(ctx context.Context) error

// Probe is a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // a failure prevents startup
	Timeout  time.Duration
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool { return r.Error == nil }

// Run executes the probes in order, each under its own timeout.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))
	for i, p := range probes {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{Probe: p, Error: err, Duration: time.Since(start)}
	}
	return results
}

// Evaluate logs every result and returns the joined errors of failed critical probes.
func Evaluate(logger *slog.Logger, results []Result) error {
	if logger == nil {
		logger = slog.Default()
	}
	var critical []error

	logger.Info("Startup Checks Summary", "count", len(results))
	for _, r := range results {
		msg := fmt.Sprintf("[%s] %-18s (%v)", status(r), r.Probe.Name, r.Duration.Round(time.Millisecond))
		switch {
		case r.Passed():
			logger.Info(msg)
		case r.Probe.Critical:
			logger.Error(msg, "error", r.Error)
			critical = append(critical, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		default:
			logger.Warn(msg, "error", r.Error)
		}
	}
	return errors.Join(critical...)
}

func status(r Result) string {
	switch {
	case r.Passed():
		return "PASS"
	case r.Probe.Critical:
		return "FAIL"
	}
	return "WARN"
}
