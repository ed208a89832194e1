package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var HappinessSubmissionContract = Contract{
	Name:      "happiness.submission",
	Invariant: "at most one submission per user per week; score rows carry no user reference",
	OwnsTx:    true,
}

// HappinessSubmissionAggregate records a weekly score. Failures are *Error with
// CodeValidation, CodeConflict, CodePreconditionFailed, CodeRetryable or CodeInternal.
type HappinessSubmissionAggregate interface {
	Aggregate

	Submit(ctx context.Context, in SubmitHappinessInput) (SubmitHappinessResult, error)
}

type SubmitHappinessInput struct {
	UserID      uuid.UUID
	CompanyID   uuid.UUID
	TeamID      uuid.UUID
	Score       int
	WeekStart   time.Time
	SubmittedAt time.Time
}

type SubmitHappinessResult struct {
	WeekStart   time.Time
	SubmittedAt time.Time
}
