package remote

import (
	"context"
	"time"
)

// PollFunc fetches the current state of a job. Implementations must return
// without blocking on the remote side; the wait loop owns the delay.
type PollFunc func(ctx context.Context, jobID string) (Job, error)

// WaitConfig controls a wait loop. Interval is the fixed delay between polls;
// Deadline bounds the total wall-clock time. A zero Deadline means the only
// bound is the caller's context.
type WaitConfig struct {
	Interval time.Duration
	Deadline time.Duration
}

// Wait polls a job until it reaches a terminal state. The returned job is the
// first terminal snapshot observed; once a terminal state is seen no further
// polls are issued, so stale non-terminal statuses can never override it.
//
// Wait returns a *TimeoutError when the deadline elapses, the context error
// when the caller abandons the run, and poll transport errors as-is. The
// remote job itself is not cancelled on abandonment.
func Wait(ctx context.Context, job Job, cfg WaitConfig, poll PollFunc, onPoll func(Job)) (Job, error) {
	if job.Terminal() {
		return job, nil
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	start := time.Now()
	if cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Deadline)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if cfg.Deadline > 0 && time.Since(start) >= cfg.Deadline {
				return job, &TimeoutError{JobID: job.ID, Elapsed: cfg.Deadline}
			}
			return job, ctx.Err()
		case <-ticker.C:
		}

		next, err := poll(ctx, job.ID)
		if err != nil {
			return job, err
		}
		job = next
		if onPoll != nil {
			onPoll(job)
		}
		if job.Terminal() {
			return job, nil
		}
	}
}
