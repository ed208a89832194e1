package survey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusDraft  = "draft"
	StatusActive = "active"
	StatusClosed = "closed"
)

const (
	QuestionRating = "rating"
	QuestionText   = "text"
	QuestionChoice = "choice"
)

// Survey belongs to a company. A global survey is visible to every employee; otherwise
// SurveyTeam rows scope it to specific teams.
type Survey struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID      `gorm:"type:uuid;not null;index;column:company_id" json:"company_id"`
	Title       string         `gorm:"not null;column:title" json:"title"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	IsGlobal    bool           `gorm:"not null;default:false;column:is_global" json:"is_global"`
	Status      string         `gorm:"not null;default:'draft';index;column:status" json:"status"`
	CreatedByID *uuid.UUID     `gorm:"type:uuid;column:created_by_id" json:"created_by_id,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Survey) TableName() string { return "survey" }

func (s *Survey) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusDraft
	}
	return nil
}

type SurveyTeam struct {
	SurveyID uuid.UUID `gorm:"type:uuid;primaryKey;column:survey_id" json:"survey_id"`
	TeamID   uuid.UUID `gorm:"type:uuid;primaryKey;index;column:team_id" json:"team_id"`
}

func (SurveyTeam) TableName() string { return "survey_team" }

type SurveyQuestion struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SurveyID uuid.UUID      `gorm:"type:uuid;not null;index:idx_survey_question_position,priority:1;column:survey_id" json:"survey_id"`
	Position int            `gorm:"not null;index:idx_survey_question_position,priority:2;column:position" json:"position"`
	Kind     string         `gorm:"not null;column:kind" json:"kind"`
	Prompt   string         `gorm:"not null;column:prompt" json:"prompt"`
	Options  datatypes.JSON `gorm:"column:options" json:"options,omitempty"`
}

func (SurveyQuestion) TableName() string { return "survey_question" }

func (q *SurveyQuestion) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type SurveyResponse struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SurveyID    uuid.UUID  `gorm:"type:uuid;not null;index;column:survey_id" json:"survey_id"`
	TeamID      *uuid.UUID `gorm:"type:uuid;index;column:team_id" json:"team_id,omitempty"`
	SubmittedAt time.Time  `gorm:"not null;column:submitted_at" json:"submitted_at"`
}

func (SurveyResponse) TableName() string { return "survey_response" }

func (r *SurveyResponse) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now().UTC()
	}
	return nil
}

type SurveyAnswer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ResponseID uuid.UUID `gorm:"type:uuid;not null;index;column:response_id" json:"response_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index;column:question_id" json:"question_id"`
	Rating     *int      `gorm:"column:rating" json:"rating,omitempty"`
	Text       string    `gorm:"column:text" json:"text,omitempty"`
	Choice     string    `gorm:"column:choice" json:"choice,omitempty"`
}

func (SurveyAnswer) TableName() string { return "survey_answer" }

func (a *SurveyAnswer) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
