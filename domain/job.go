package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an analysis job. Stored as-is in the
// database, so the string values are part of the persistence contract.
type JobStatus string

const (
	StatusPending         JobStatus = "pending"
	StatusProcessing      JobStatus = "processing"
	StatusTextExtracted   JobStatus = "text_extracted"
	StatusSkillsExtracted JobStatus = "skills_extracted"
	StatusCompleted       JobStatus = "completed"
	StatusFailed          JobStatus = "failed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ClaimedStatuses are the states in which a worker owns the job. A job
// stuck in one of them past the lease means that worker died mid-pipeline.
func ClaimedStatuses() []JobStatus {
	return []JobStatus{StatusProcessing, StatusTextExtracted, StatusSkillsExtracted}
}

// transitions lists the allowed successors for each status. Terminal states
// have none.
var transitions = map[JobStatus][]JobStatus{
	StatusPending:         {StatusProcessing, StatusFailed},
	StatusProcessing:      {StatusTextExtracted, StatusFailed},
	StatusTextExtracted:   {StatusSkillsExtracted, StatusFailed},
	StatusSkillsExtracted: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to JobStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AnalysisJob is one resume-analysis request. Created in pending by the
// upload layer and mutated only by the worker until it reaches a terminal
// status. Score, Breakdown, Skills and MissingSkills are populated only on
// completed; Error only on failed.
type AnalysisJob struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	OwnerID        string          `gorm:"size:64;index;not null" json:"owner_id"`
	SourceFilePath string          `gorm:"size:512;not null" json:"source_file_path"`
	TargetJobID    *uint           `json:"target_job_id,omitempty"`
	Status         JobStatus       `gorm:"size:32;index;default:'pending'" json:"status"`
	ExtractedText  string          `gorm:"type:longtext" json:"-"`
	Score          int             `json:"score"`
	Breakdown      *ScoreBreakdown `gorm:"serializer:json" json:"breakdown,omitempty"`
	Skills         []string        `gorm:"serializer:json" json:"skills,omitempty"`
	MissingSkills  []string        `gorm:"serializer:json" json:"missing_skills,omitempty"`
	Error          string          `gorm:"size:512" json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewAnalysisJob creates a pending job for the given owner and stored file.
func NewAnalysisJob(ownerID, sourceFilePath string, targetJobID *uint) *AnalysisJob {
	return &AnalysisJob{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		SourceFilePath: sourceFilePath,
		TargetJobID:    targetJobID,
		Status:         StatusPending,
	}
}
