package happiness

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type SubmissionRepo interface {
	// InsertIfAbsent reports false when the user already has a row for that week.
	InsertIfAbsent(dbc dbctx.Context, sub *types.HappinessScoreSubmission) (bool, error)
	Exists(dbc dbctx.Context, userID uuid.UUID, weekStart time.Time) (bool, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{db: db, log: baseLog.With("repo", "HappinessSubmissionRepo")}
}

func (r *submissionRepo) InsertIfAbsent(dbc dbctx.Context, sub *types.HappinessScoreSubmission) (bool, error) {
	if sub == nil {
		return false, nil
	}
	sub.WeekStartDate = sub.WeekStartDate.UTC()
	sub.SubmittedAt = sub.SubmittedAt.UTC()
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start_date"}},
			DoNothing: true,
		}).
		Create(sub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *submissionRepo) Exists(dbc dbctx.Context, userID uuid.UUID, weekStart time.Time) (bool, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.HappinessScoreSubmission{}).
		Where("user_id = ? AND week_start_date = ?", userID, weekStart.UTC()).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
