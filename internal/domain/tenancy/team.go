package tenancy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID      `gorm:"type:uuid;not null;index;column:company_id" json:"company_id"`
	Name        string         `gorm:"not null;column:name" json:"name"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Team) TableName() string { return "team" }

func (t *Team) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TeamMembership links a user to a team. A membership is active while LeftAt is nil.
type TeamMembership struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID   uuid.UUID  `gorm:"type:uuid;not null;index;column:team_id" json:"team_id"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_team_membership_user_joined,priority:1;column:user_id" json:"user_id"`
	Role     string     `gorm:"not null;default:'member';column:role" json:"role"`
	JoinedAt time.Time  `gorm:"not null;index:idx_team_membership_user_joined,priority:2;column:joined_at" json:"joined_at"`
	LeftAt   *time.Time `gorm:"column:left_at" json:"left_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TeamMembership) TableName() string { return "team_membership" }

func (m *TeamMembership) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return nil
}

func (m TeamMembership) Active() bool { return m.LeftAt == nil }
