package runner

import (
	"context"
	"time"
)

// StartResidueSweeper launches the best-effort background sweeper named
// in spec §9's stalled-runs discussion: a goroutine that wakes on a
// ticker and logs (never deletes) aggregation entries older than
// horizon. Disabled entirely when horizon is non-positive, matching
// rtconfig.ResidueSweepHorizon's zero-value default.
//
// The returned stop function cancels the ticker and blocks until the
// goroutine has exited; callers should defer it alongside the spawner's
// own wait function.
func (r *PipelineRunner) StartResidueSweeper(ctx context.Context, horizon time.Duration) (stop func()) {
	if horizon <= 0 {
		return func() {}
	}

	interval := horizon / 4
	if interval <= 0 {
		interval = horizon
	}

	ticker := time.NewTicker(interval)
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-quit:
				return
			case <-ticker.C:
				r.sweepAged(horizon)
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(quit)
		<-done
	}
}

// sweepAged logs every aggregation entry, across every component, that
// has sat incomplete for at least horizon. Purely diagnostic: it never
// removes pending work, so a slow-but-still-progressing run is never
// silently dropped.
func (r *PipelineRunner) sweepAged(horizon time.Duration) {
	now := time.Now()
	for i, spec := range r.specs {
		for _, a := range r.states[i].agedEntries(horizon, now) {
			r.log.Warn("aggregation entry aged past residue-sweep horizon", map[string]any{
				"component": spec.Name,
				"run_id":    a.runID.String(),
				"age":       a.age.String(),
			})
		}
	}
}
