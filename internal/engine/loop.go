// Wall-clock step runner: drives AdvanceStep from a background loop, one
// simulated day per interval.
package engine

import (
	"log/slog"
	"time"
)

// Runner paces simulation steps against the wall clock.
type Runner struct {
	Speed    float64       // Multiplier: 1.0 = one step per interval, 0 = paused
	Interval time.Duration // Base step interval
	Running  bool

	// OnStep fires once per step with the step number about to run.
	OnStep func(step int)

	step int
}

// NewRunner creates a runner with default pacing (one step per 5 seconds).
func NewRunner() *Runner {
	return &Runner{
		Speed:    1.0,
		Interval: 5 * time.Second,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (r *Runner) Run() {
	r.Running = true
	slog.Info("simulation loop started", "interval", r.Interval, "speed", r.Speed)

	for r.Running {
		if r.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		r.step++
		if r.OnStep != nil {
			r.OnStep(r.step)
		}

		// Sleep for the remainder of the interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(r.Interval) / r.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation loop stopped", "steps", r.step)
}

// Stop halts the loop after the current step.
func (r *Runner) Stop() {
	r.Running = false
}
