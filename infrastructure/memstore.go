package infrastructure

import (
	"context"
	"sync"
	"time"

	"resume-analyzer/domain"
)

// MemoryJobStore is an in-memory implementation of domain.JobStore and
// domain.PostingStore with the same conditional-update semantics as the
// MySQL store. Used by tests and for running the pipeline without a
// database.
type MemoryJobStore struct {
	mu       sync.Mutex
	jobs     map[string]*domain.AnalysisJob
	postings map[uint]*domain.JobPosting
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs:     make(map[string]*domain.AnalysisJob),
		postings: make(map[uint]*domain.JobPosting),
	}
}

func (s *MemoryJobStore) Create(_ context.Context, job *domain.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *job
	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}
	s.jobs[stored.ID] = &stored
	return nil
}

func (s *MemoryJobStore) Get(_ context.Context, id string) (*domain.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	clone := *job
	return &clone, nil
}

// transition applies mutate if the job exists and is currently in from.
func (s *MemoryJobStore) transition(id string, from, to domain.JobStatus, mutate func(*domain.AnalysisJob)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != from || !domain.CanTransition(from, to) {
		return false
	}
	job.Status = to
	if mutate != nil {
		mutate(job)
	}
	job.UpdatedAt = time.Now()
	return true
}

func (s *MemoryJobStore) Claim(_ context.Context, id string) (bool, error) {
	return s.transition(id, domain.StatusPending, domain.StatusProcessing, nil), nil
}

func (s *MemoryJobStore) MarkExtracted(_ context.Context, id, text string) (bool, error) {
	return s.transition(id, domain.StatusProcessing, domain.StatusTextExtracted,
		func(j *domain.AnalysisJob) { j.ExtractedText = text }), nil
}

func (s *MemoryJobStore) MarkScored(_ context.Context, id string, result domain.ScoreResult) (bool, error) {
	return s.transition(id, domain.StatusTextExtracted, domain.StatusSkillsExtracted,
		func(j *domain.AnalysisJob) {
			breakdown := result.Breakdown
			j.Score = result.Score
			j.Breakdown = &breakdown
			j.Skills = result.Skills
			j.MissingSkills = result.MissingSkills
		}), nil
}

func (s *MemoryJobStore) Complete(_ context.Context, id string) (bool, error) {
	return s.transition(id, domain.StatusSkillsExtracted, domain.StatusCompleted, nil), nil
}

func (s *MemoryJobStore) Fail(_ context.Context, id, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status.Terminal() {
		return false, nil
	}
	job.Status = domain.StatusFailed
	job.Error = reason
	job.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryJobStore) FailStale(_ context.Context, olderThan time.Duration, reason string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var swept int64
	claimed := make(map[domain.JobStatus]struct{})
	for _, status := range domain.ClaimedStatuses() {
		claimed[status] = struct{}{}
	}
	for _, job := range s.jobs {
		if _, ok := claimed[job.Status]; ok && job.UpdatedAt.Before(cutoff) {
			job.Status = domain.StatusFailed
			job.Error = reason
			job.UpdatedAt = time.Now()
			swept++
		}
	}
	return swept, nil
}

// AddPosting registers a posting so lookups by target id resolve.
func (s *MemoryJobStore) AddPosting(posting *domain.JobPosting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *posting
	s.postings[stored.ID] = &stored
}

func (s *MemoryJobStore) GetPosting(_ context.Context, id uint) (*domain.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posting, ok := s.postings[id]
	if !ok {
		return nil, domain.ErrPostingNotFound
	}
	clone := *posting
	return &clone, nil
}
