package aggregates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/bloom-backend/internal/data/repos"
	types "github.com/yungbote/bloom-backend/internal/domain"
	domainagg "github.com/yungbote/bloom-backend/internal/domain/aggregates"
	"github.com/yungbote/bloom-backend/internal/domain/happiness"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
)

type HappinessSubmissionAggregateDeps struct {
	Base BaseDeps

	Submissions repos.HappinessSubmissionRepo
	Scores      repos.HappinessScoreRepo
}

type happinessSubmissionAggregate struct {
	deps HappinessSubmissionAggregateDeps
}

func NewHappinessSubmissionAggregate(deps HappinessSubmissionAggregateDeps) domainagg.HappinessSubmissionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &happinessSubmissionAggregate{deps: deps}
}

func (a *happinessSubmissionAggregate) Contract() domainagg.Contract {
	return domainagg.HappinessSubmissionContract
}

func (a *happinessSubmissionAggregate) Submit(ctx context.Context, in domainagg.SubmitHappinessInput) (domainagg.SubmitHappinessResult, error) {
	const op = "Happiness.SubmissionAggregate.Submit"
	var out domainagg.SubmitHappinessResult

	if err := validateSubmitInput(in); err != nil {
		return out, MapError(op, err)
	}
	weekStart := in.WeekStart.UTC()
	submittedAt := in.SubmittedAt.UTC()
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		inserted, err := a.deps.Submissions.InsertIfAbsent(dbc, &types.HappinessScoreSubmission{
			UserID:        in.UserID,
			WeekStartDate: weekStart,
			SubmittedAt:   submittedAt,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return ConflictError("happiness score already submitted for this week")
		}
		return a.deps.Scores.Create(dbc, &types.HappinessScore{
			TeamID:        in.TeamID,
			CompanyID:     in.CompanyID,
			Score:         in.Score,
			WeekStartDate: weekStart,
		})
	})
	if err != nil {
		return out, err
	}
	out.WeekStart = weekStart
	out.SubmittedAt = submittedAt
	return out, nil
}

func validateSubmitInput(in domainagg.SubmitHappinessInput) error {
	switch {
	case in.UserID == uuid.Nil:
		return ValidationError("user id is required")
	case in.CompanyID == uuid.Nil:
		return ValidationError("company id is required")
	case in.TeamID == uuid.Nil:
		return ValidationError("team id is required")
	case in.WeekStart.IsZero():
		return ValidationError("week start is required")
	case in.Score < happiness.MinStoredScore || in.Score > happiness.MaxStoredScore:
		return errors.Join(ErrValidation, fmt.Errorf("%w: stored score %d outside %d..%d",
			happiness.ErrInvalidScore, in.Score, happiness.MinStoredScore, happiness.MaxStoredScore))
	}
	return nil
}
