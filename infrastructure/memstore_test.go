package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer/domain"
)

func seedJob(t *testing.T, s *MemoryJobStore, status domain.JobStatus) *domain.AnalysisJob {
	t.Helper()
	job := domain.NewAnalysisJob("user-1", "/tmp/resume.txt", nil)
	job.Status = status
	require.NoError(t, s.Create(context.Background(), job))
	return job
}

func TestMemoryJobStore_getMissing(t *testing.T) {
	s := NewMemoryJobStore()
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestMemoryJobStore_claimOnlyOnce(t *testing.T) {
	s := NewMemoryJobStore()
	job := seedJob(t, s, domain.StatusPending)
	ctx := context.Background()

	ok, err := s.Claim(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second claim (duplicate delivery) must not apply.
	ok, err = s.Claim(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)
}

func TestMemoryJobStore_fullLifecycle(t *testing.T) {
	s := NewMemoryJobStore()
	job := seedJob(t, s, domain.StatusPending)
	ctx := context.Background()

	ok, _ := s.Claim(ctx, job.ID)
	require.True(t, ok)
	ok, _ = s.MarkExtracted(ctx, job.ID, "extracted resume text")
	require.True(t, ok)
	ok, _ = s.MarkScored(ctx, job.ID, domain.ScoreResult{
		Score:     42,
		Breakdown: domain.ScoreBreakdown{Skill: 50, Experience: 40, Education: 30, Format: 40},
		Skills:    []string{"Python"},
	})
	require.True(t, ok)
	ok, _ = s.Complete(ctx, job.ID)
	require.True(t, ok)

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, 42, got.Score)
	assert.Equal(t, "extracted resume text", got.ExtractedText)
	require.NotNil(t, got.Breakdown)
	assert.Equal(t, 50, got.Breakdown.Skill)
	assert.Equal(t, []string{"Python"}, got.Skills)
}

func TestMemoryJobStore_noStageSkipping(t *testing.T) {
	s := NewMemoryJobStore()
	job := seedJob(t, s, domain.StatusPending)
	ctx := context.Background()

	ok, _ := s.MarkExtracted(ctx, job.ID, "text")
	assert.False(t, ok, "pending job must be claimed before text is recorded")
	ok, _ = s.Complete(ctx, job.ID)
	assert.False(t, ok)
}

func TestMemoryJobStore_terminalJobsAreImmutable(t *testing.T) {
	ctx := context.Background()
	for _, terminal := range []domain.JobStatus{domain.StatusCompleted, domain.StatusFailed} {
		s := NewMemoryJobStore()
		job := seedJob(t, s, terminal)

		ok, _ := s.Claim(ctx, job.ID)
		assert.False(t, ok)
		ok, _ = s.Fail(ctx, job.ID, "should not apply")
		assert.False(t, ok)

		got, err := s.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, terminal, got.Status)
		assert.Empty(t, got.Error)
	}
}

func TestMemoryJobStore_failRecordsReason(t *testing.T) {
	s := NewMemoryJobStore()
	job := seedJob(t, s, domain.StatusProcessing)
	ctx := context.Background()

	ok, err := s.Fail(ctx, job.ID, "no readable text found in file")
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := s.Get(ctx, job.ID)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "no readable text found in file", got.Error)
}

func TestMemoryJobStore_failStaleSweepsAllClaimedStates(t *testing.T) {
	s := NewMemoryJobStore()
	ctx := context.Background()

	var staleIDs []string
	for _, status := range domain.ClaimedStatuses() {
		job := domain.NewAnalysisJob("user-1", "/tmp/a.txt", nil)
		job.Status = status
		job.UpdatedAt = time.Now().Add(-time.Hour)
		require.NoError(t, s.Create(ctx, job))
		staleIDs = append(staleIDs, job.ID)
	}

	swept, err := s.FailStale(ctx, 5*time.Minute, "worker crashed")
	require.NoError(t, err)
	assert.Equal(t, int64(len(staleIDs)), swept)

	for _, id := range staleIDs {
		got, _ := s.Get(ctx, id)
		assert.Equal(t, domain.StatusFailed, got.Status)
		assert.Equal(t, "worker crashed", got.Error)
	}
}

func TestMemoryJobStore_failStaleIgnoresFreshAndUnclaimed(t *testing.T) {
	s := NewMemoryJobStore()
	ctx := context.Background()

	stale := domain.NewAnalysisJob("user-1", "/tmp/a.txt", nil)
	stale.Status = domain.StatusProcessing
	stale.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.Create(ctx, stale))

	fresh := seedJob(t, s, domain.StatusProcessing)
	pending := seedJob(t, s, domain.StatusPending)

	swept, err := s.FailStale(ctx, 5*time.Minute, "worker crashed")
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	got, _ := s.Get(ctx, stale.ID)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "worker crashed", got.Error)

	got, _ = s.Get(ctx, fresh.ID)
	assert.Equal(t, domain.StatusProcessing, got.Status)
	got, _ = s.Get(ctx, pending.ID)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestMemoryJobStore_postings(t *testing.T) {
	s := NewMemoryJobStore()
	s.AddPosting(&domain.JobPosting{ID: 7, Title: "Backend Engineer", Skills: []string{"golang"}})

	posting, err := s.GetPosting(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", posting.Title)

	_, err = s.GetPosting(context.Background(), 8)
	assert.ErrorIs(t, err, domain.ErrPostingNotFound)
}
