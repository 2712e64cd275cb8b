package util

import (
	"fmt"
	"strings"
	"time"

	"stockforecast/internal/domain"
)

const layout = time.DateOnly

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ToDate drops the time of day and location, keeping the calendar date t
// has in its own location.
func ToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(layout)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unparsable date %q", domain.ErrInvalidArgument, s)
	}
	return t, nil
}

// ParseLooseDate also accepts RFC3339 timestamps and "YYYY-MM-DD HH:MM:SS",
// which some providers send for daily bars. The calendar date is kept as
// written.
func ParseLooseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range []string{layout, time.RFC3339, time.DateTime} {
		if t, err := time.Parse(l, s); err == nil {
			return ToDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable date %q", domain.ErrInvalidArgument, s)
}
