package happiness

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type ScoreRepo interface {
	Create(dbc dbctx.Context, score *types.HappinessScore) error
	// ListByCompanySince returns scores with week_start_date >= since. An empty teamIDs means every team.
	ListByCompanySince(dbc dbctx.Context, companyID uuid.UUID, since time.Time, teamIDs []uuid.UUID) ([]*types.HappinessScore, error)
}

type scoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	return &scoreRepo{db: db, log: baseLog.With("repo", "HappinessScoreRepo")}
}

func (r *scoreRepo) Create(dbc dbctx.Context, score *types.HappinessScore) error {
	if score == nil {
		return nil
	}
	score.WeekStartDate = score.WeekStartDate.UTC()
	return dbc.DB(r.db).Create(score).Error
}

func (r *scoreRepo) ListByCompanySince(dbc dbctx.Context, companyID uuid.UUID, since time.Time, teamIDs []uuid.UUID) ([]*types.HappinessScore, error) {
	q := dbc.DB(r.db).
		Where("company_id = ? AND week_start_date >= ?", companyID, since.UTC())
	if len(teamIDs) > 0 {
		q = q.Where("team_id IN ?", teamIDs)
	}
	var out []*types.HappinessScore
	if err := q.Order("week_start_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
