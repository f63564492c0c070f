package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"resume-analyzer/domain"
)

// GormJobStore implements domain.JobStore and domain.PostingStore on top of
// the MySQL record store. Every lifecycle mutation is a single conditional
// UPDATE keyed on the current status, so concurrent workers can never move
// the same job twice: whichever update matches zero rows reports false and
// the caller abandons the job.
type GormJobStore struct {
	db *gorm.DB
}

func NewGormJobStore(db *gorm.DB) *GormJobStore {
	return &GormJobStore{db: db}
}

func (s *GormJobStore) Create(ctx context.Context, job *domain.AnalysisJob) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("creating job %s: %w", job.ID, err)
	}
	return nil
}

func (s *GormJobStore) Get(ctx context.Context, id string) (*domain.AnalysisJob, error) {
	var job domain.AnalysisJob
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading job %s: %w", id, err)
	}
	return &job, nil
}

func (s *GormJobStore) Claim(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&domain.AnalysisJob{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("status", domain.StatusProcessing)
	if res.Error != nil {
		return false, fmt.Errorf("claiming job %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormJobStore) MarkExtracted(ctx context.Context, id, text string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&domain.AnalysisJob{}).
		Where("id = ? AND status = ?", id, domain.StatusProcessing).
		Select("Status", "ExtractedText").
		Updates(&domain.AnalysisJob{
			Status:        domain.StatusTextExtracted,
			ExtractedText: text,
		})
	if res.Error != nil {
		return false, fmt.Errorf("recording extracted text for job %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormJobStore) MarkScored(ctx context.Context, id string, result domain.ScoreResult) (bool, error) {
	breakdown := result.Breakdown
	res := s.db.WithContext(ctx).Model(&domain.AnalysisJob{}).
		Where("id = ? AND status = ?", id, domain.StatusTextExtracted).
		Select("Status", "Score", "Breakdown", "Skills", "MissingSkills").
		Updates(&domain.AnalysisJob{
			Status:        domain.StatusSkillsExtracted,
			Score:         result.Score,
			Breakdown:     &breakdown,
			Skills:        result.Skills,
			MissingSkills: result.MissingSkills,
		})
	if res.Error != nil {
		return false, fmt.Errorf("recording score for job %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormJobStore) Complete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&domain.AnalysisJob{}).
		Where("id = ? AND status = ?", id, domain.StatusSkillsExtracted).
		Update("status", domain.StatusCompleted)
	if res.Error != nil {
		return false, fmt.Errorf("completing job %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormJobStore) Fail(ctx context.Context, id, reason string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&domain.AnalysisJob{}).
		Where("id = ? AND status NOT IN ?", id,
			[]domain.JobStatus{domain.StatusCompleted, domain.StatusFailed}).
		Select("Status", "Error").
		Updates(&domain.AnalysisJob{
			Status: domain.StatusFailed,
			Error:  reason,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failing job %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormJobStore) FailStale(ctx context.Context, olderThan time.Duration, reason string) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := s.db.WithContext(ctx).Model(&domain.AnalysisJob{}).
		Where("status IN ? AND updated_at < ?", domain.ClaimedStatuses(), cutoff).
		Select("Status", "Error").
		Updates(&domain.AnalysisJob{
			Status: domain.StatusFailed,
			Error:  reason,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("sweeping stale jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormJobStore) GetPosting(ctx context.Context, id uint) (*domain.JobPosting, error) {
	var posting domain.JobPosting
	err := s.db.WithContext(ctx).First(&posting, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPostingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading posting %d: %w", id, err)
	}
	return &posting, nil
}
