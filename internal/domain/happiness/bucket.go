package happiness

import (
	"fmt"
	"strings"
	"time"
)

type ViewType string

const (
	ViewWeekly  ViewType = "weekly"
	ViewMonthly ViewType = "monthly"
)

func ParseViewType(raw string) (ViewType, error) {
	switch ViewType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ViewWeekly:
		return ViewWeekly, nil
	case ViewMonthly:
		return ViewMonthly, nil
	default:
		return "", fmt.Errorf("unknown view type %q", raw)
	}
}

// Bucket is one point on an analytics time axis.
type Bucket struct {
	Key   string
	Start time.Time
}

// BucketFor maps a week start to its bucket. Monthly buckets use the month the week starts in.
func BucketFor(weekStart time.Time, view ViewType) Bucket {
	if view == ViewMonthly {
		start := time.Date(weekStart.Year(), weekStart.Month(), 1, 0, 0, 0, 0, weekStart.Location())
		return Bucket{Key: start.Format("2006-01"), Start: start}
	}
	return Bucket{Key: weekStart.Format("2006-01-02"), Start: weekStart}
}

// WindowBuckets lists every bucket whose weeks start inside the trailing window, ascending.
func WindowBuckets(now time.Time, loc *time.Location, weeks int, view ViewType) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	cutoff := WindowStart(local, weeks)
	first := WeekStart(cutoff)
	if first.Before(cutoff) {
		first = first.AddDate(0, 0, 7)
	}
	last := WeekStart(local)

	out := make([]Bucket, 0, weeks+1)
	for ws := first; !ws.After(last); ws = ws.AddDate(0, 0, 7) {
		b := BucketFor(ws, view)
		if n := len(out); n > 0 && out[n-1].Key == b.Key {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BucketKey is the grouping key for a week start under the given view.
func BucketKey(weekStart time.Time, view ViewType) string {
	return BucketFor(weekStart, view).Key
}
