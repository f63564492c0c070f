// Package worker drives queued analysis jobs through extraction, scoring and
// persistence to a terminal state, exactly once per job.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"resume-analyzer/domain"
	"resume-analyzer/extractor"
	"resume-analyzer/infrastructure"
	"resume-analyzer/scoring"
)

// internalErrorReason is the user-visible reason for unexpected pipeline
// failures. Deliberately generic: internals never leak to the requester.
const internalErrorReason = "internal error while analyzing resume"

// TextExtractor is the extraction dependency as the worker sees it.
type TextExtractor interface {
	Extract(ctx context.Context, path string, format extractor.Format) (string, error)
}

// ScoreFunc computes the rule-based score for extracted text.
type ScoreFunc func(text string, targetSkills []string) domain.ScoreResult

// Worker processes ingestion messages. Safe for concurrent use: all
// per-job state lives in the store, guarded by conditional updates.
type Worker struct {
	jobs     domain.JobStore
	postings domain.PostingStore
	extract  TextExtractor
	score    ScoreFunc
	notifier *Notifier
	logger   *slog.Logger
}

// New wires a worker with its dependencies. notifier may be nil when no
// in-process completion signal is wanted.
func New(jobs domain.JobStore, postings domain.PostingStore, ext TextExtractor, notifier *Notifier, logger *slog.Logger) *Worker {
	return &Worker{
		jobs:     jobs,
		postings: postings,
		extract:  ext,
		score:    scoring.Score,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleMessage drives one delivery to a terminal state. It never returns
// an error: every outcome, including panics, ends with the job terminal and
// the message eligible for ack. Duplicate deliveries for a job that already
// progressed are discarded by the claim check.
func (w *Worker) HandleMessage(ctx context.Context, msg infrastructure.IngestMessage) {
	log := w.logger.With("job_id", msg.JobID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic", "panic", r)
			w.fail(ctx, msg.JobID, internalErrorReason)
		}
	}()

	job, err := w.jobs.Get(ctx, msg.JobID)
	if errors.Is(err, domain.ErrJobNotFound) {
		log.Warn("discarding message for unknown job")
		return
	}
	if err != nil {
		log.Error("loading job", "err", err)
		return
	}
	if job.Status.Terminal() {
		log.Info("discarding redelivery for terminal job", "status", string(job.Status))
		return
	}

	claimed, err := w.jobs.Claim(ctx, job.ID)
	if err != nil {
		log.Error("claiming job", "err", err)
		return
	}
	if !claimed {
		log.Info("job already claimed elsewhere, discarding")
		return
	}

	path := msg.FilePath
	if path == "" {
		path = job.SourceFilePath
	}

	format, err := extractor.ParseFormat(path)
	if err != nil {
		w.fail(ctx, job.ID, extractionReason(err))
		return
	}

	text, err := w.extract.Extract(ctx, path, format)
	if err != nil {
		// Non-retryable by contract: the same bytes fail the same way.
		log.Warn("extraction failed", "format", string(format), "err", err)
		w.fail(ctx, job.ID, extractionReason(err))
		return
	}

	if ok, err := w.jobs.MarkExtracted(ctx, job.ID, text); err != nil || !ok {
		w.abandon(log, "recording extracted text", err)
		return
	}

	target, err := w.targetSkills(ctx, job)
	if err != nil {
		log.Error("loading target posting", "err", err)
		w.fail(ctx, job.ID, internalErrorReason)
		return
	}

	result := w.score(text, target)

	if ok, err := w.jobs.MarkScored(ctx, job.ID, result); err != nil || !ok {
		w.abandon(log, "recording score", err)
		return
	}
	if ok, err := w.jobs.Complete(ctx, job.ID); err != nil || !ok {
		w.abandon(log, "completing job", err)
		return
	}

	w.notifier.Publish(job.ID, domain.StatusCompleted)
	log.Info("job completed", "score", result.Score, "skills", len(result.Skills))
}

// targetSkills resolves the skills expected for the job's target posting:
// the posting's own list plus anything the vocabulary detects in its
// description. Nil when the job has no target.
func (w *Worker) targetSkills(ctx context.Context, job *domain.AnalysisJob) ([]string, error) {
	if job.TargetJobID == nil {
		return nil, nil
	}
	posting, err := w.postings.GetPosting(ctx, *job.TargetJobID)
	if errors.Is(err, domain.ErrPostingNotFound) {
		w.logger.Warn("target posting missing, scoring without target",
			"job_id", job.ID, "posting_id", *job.TargetJobID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var target []string
	for _, s := range posting.Skills {
		key := strings.ToLower(s)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			target = append(target, s)
		}
	}
	for _, s := range scoring.DetectSkills(posting.Description) {
		key := strings.ToLower(s)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			target = append(target, key)
		}
	}
	return target, nil
}

func (w *Worker) fail(ctx context.Context, id, reason string) {
	ok, err := w.jobs.Fail(ctx, id, reason)
	if err != nil {
		w.logger.Error("failing job", "job_id", id, "err", err)
		return
	}
	if ok {
		w.notifier.Publish(id, domain.StatusFailed)
	}
}

// abandon handles a transition that did not apply: either the store errored
// or another actor (a sweeper, a competing delivery) already moved the job.
// Either way this worker no longer owns it.
func (w *Worker) abandon(log *slog.Logger, op string, err error) {
	if err != nil {
		log.Error(op, "err", err)
		return
	}
	log.Info("job moved elsewhere, abandoning", "op", op)
}

// extractionReason maps an extraction failure to the short human-readable
// reason stored on the job.
func extractionReason(err error) string {
	var extErr *domain.ExtractionError
	if errors.As(err, &extErr) {
		return extErr.Detail
	}
	return internalErrorReason
}
