package worker

import (
	"context"
	"log/slog"
	"time"

	"resume-analyzer/domain"
)

// staleReason is recorded on jobs recovered by the sweep.
const staleReason = "analysis was interrupted, please upload the resume again"

// Sweeper is the crash-recovery policy: a job sitting in any claimed state
// (processing, text_extracted, skills_extracted) for longer than the lease
// means the worker that claimed it died or abandoned it, so the sweep
// fails it rather than leaving it stuck forever. Failing (instead of
// re-enqueueing) is deliberate: a crash mid-extraction is indistinguishable
// from a poison input, and the user's retry path is a fresh upload.
type Sweeper struct {
	jobs     domain.JobStore
	lease    time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper builds a sweeper. lease must comfortably exceed the slowest
// legitimate pipeline stage (OCR can take several seconds per page).
func NewSweeper(jobs domain.JobStore, lease, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{jobs: jobs, lease: lease, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	swept, err := s.jobs.FailStale(ctx, s.lease, staleReason)
	if err != nil {
		s.logger.Error("sweeping stale jobs", "err", err)
		return
	}
	if swept > 0 {
		s.logger.Warn("recovered stale jobs", "count", swept, "lease", s.lease)
	}
}
