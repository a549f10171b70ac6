package service

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DisplayDateLayout is the day/Mon/Year form used on the command line.
	DisplayDateLayout = "02/Jan/2006"
	isoDateLayout     = "2006-01-02"

	defaultLookbackDays = 30
)

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts 02/Jan/2006 and 2006-01-02.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DisplayDateLayout, isoDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected DD/Mon/YYYY (e.g. 01/Jun/2024) or YYYY-MM-DD", s)
}

// FromBeginning as a --from value selects from the earliest record.
const FromBeginning = "a"

// DateRange resolves the --from/--to pair. An empty from defaults to 30 days
// before now, FromBeginning reaches back to the earliest date, and an empty to
// defaults to now.
func DateRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	end := dateOnly(now)
	if to != "" {
		t, err := ParseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}

	start := dateOnly(now).AddDate(0, 0, -defaultLookbackDays)
	switch from {
	case "":
	case FromBeginning:
		start, _ = allTime()
	default:
		t, err := ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s is after --to %s", start.Format(DisplayDateLayout), end.Format(DisplayDateLayout))
	}
	return start, end, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}
