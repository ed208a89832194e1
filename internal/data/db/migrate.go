package db

import (
	"fmt"

	types "github.com/yungbote/bloom-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes creates the partial indexes GORM tags cannot express.
// Both statements are valid on Postgres and SQLite.
func EnsureIndexes(db *gorm.DB) error {
	// Primary team lookup only scans active memberships.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_team_membership_active_user
		ON team_membership (user_id, joined_at, team_id)
		WHERE left_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_team_membership_active_user: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_survey_active_company
		ON survey (company_id, created_at)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_survey_active_company: %w", err)
	}
	return nil
}
