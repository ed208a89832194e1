package happiness

import (
	"errors"
	"fmt"
	"math"
)

const (
	MinScore = 0.5
	MaxScore = 5.0

	MinStoredScore = 1
	MaxStoredScore = 10
)

var ErrInvalidScore = errors.New("invalid happiness score")

// ToStored converts a 0.5..5.0 score to its stored 1..10 integer, rounding score*2 half away
// from zero so off-step inputs like 3.3 land on the nearest half point.
func ToStored(score float64) (int, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: not a number", ErrInvalidScore)
	}
	if score < MinScore || score > MaxScore {
		return 0, fmt.Errorf("%w: %.2f is outside %.1f..%.1f", ErrInvalidScore, score, MinScore, MaxScore)
	}
	return int(math.Round(score * 2)), nil
}

// FromStored converts a stored 1..10 score back to the 0.5..5.0 display scale.
func FromStored(stored int) float64 {
	return float64(stored) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
