package happiness

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HappinessScoreSubmission records that a user submitted in a given week. It never carries the score.
type HappinessScoreSubmission struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_happiness_submission_user_week,priority:1;column:user_id" json:"user_id"`
	WeekStartDate time.Time `gorm:"not null;uniqueIndex:idx_happiness_submission_user_week,priority:2;column:week_start_date" json:"week_start_date"`
	SubmittedAt   time.Time `gorm:"not null;column:submitted_at" json:"submitted_at"`
}

func (HappinessScoreSubmission) TableName() string { return "happiness_score_submission" }

func (s *HappinessScoreSubmission) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// HappinessScore is the anonymous signal. It must never gain a user reference, and it has no
// creation timestamp so it cannot be joined back to a submission by time.
type HappinessScore struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID        uuid.UUID `gorm:"type:uuid;not null;index;column:team_id" json:"team_id"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;index:idx_happiness_score_company_week,priority:1;column:company_id" json:"company_id"`
	Score         int       `gorm:"not null;check:chk_happiness_score_range,score >= 1 AND score <= 10;column:score" json:"score"`
	WeekStartDate time.Time `gorm:"not null;index:idx_happiness_score_company_week,priority:2;column:week_start_date" json:"week_start_date"`
}

func (HappinessScore) TableName() string { return "happiness_score" }

func (s *HappinessScore) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
