package domain

import (
	"context"
	"time"
)

// JobStore persists analysis jobs. Every mutation is a conditional update
// guarded by the job's current status: the bool result reports whether the
// transition applied. A false result with a nil error means the job was not
// in the expected state (already claimed, or terminal) and the caller must
// treat the job as owned elsewhere. This is the only concurrency control the
// pipeline needs: one worker owns a job at a time.
type JobStore interface {
	Create(ctx context.Context, job *AnalysisJob) error
	Get(ctx context.Context, id string) (*AnalysisJob, error)

	// Claim moves a job pending → processing.
	Claim(ctx context.Context, id string) (bool, error)
	// MarkExtracted moves processing → text_extracted and records the text.
	MarkExtracted(ctx context.Context, id, text string) (bool, error)
	// MarkScored moves text_extracted → skills_extracted and records the
	// score, breakdown and skill lists.
	MarkScored(ctx context.Context, id string, res ScoreResult) (bool, error)
	// Complete moves skills_extracted → completed.
	Complete(ctx context.Context, id string) (bool, error)
	// Fail moves any non-terminal status → failed with the given reason.
	// A terminal job is left untouched.
	Fail(ctx context.Context, id, reason string) (bool, error)

	// FailStale fails every job that has sat in a claimed state (see
	// ClaimedStatuses) for longer than olderThan, returning how many were
	// swept. Used by crash recovery.
	FailStale(ctx context.Context, olderThan time.Duration, reason string) (int64, error)
}

// PostingStore reads target job postings.
type PostingStore interface {
	GetPosting(ctx context.Context, id uint) (*JobPosting, error)
}
