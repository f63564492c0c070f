package domain

import "time"

// JobPosting is a target role a resume can be analyzed against. The posting's
// skill list (plus skills detected in its description) feeds the scorer's
// missing-skill output.
type JobPosting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Skills      []string  `gorm:"serializer:json" json:"skills"`
	CreatedAt   time.Time `json:"created_at"`
}
