package happiness

import "time"

// WeekStart returns Monday 00:00:00 of the ISO week containing t, in t's location.
// Sunday is the last day of the week, never the first.
func WeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
}

// WeekStartIn is WeekStart evaluated in loc. A nil loc means time.Local.
func WeekStartIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return WeekStart(t.In(loc))
}

// WindowStart is the inclusive lower bound of a trailing window of weeks ending at now.
func WindowStart(now time.Time, weeks int) time.Time {
	if weeks < 0 {
		weeks = 0
	}
	return now.AddDate(0, 0, -7*weeks)
}
