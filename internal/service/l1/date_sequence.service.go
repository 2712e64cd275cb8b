package l1_service

import (
	"fmt"
	"time"

	"stockforecast/internal/domain"
	"stockforecast/internal/util"
)

// ExtrapolateDates returns the count calendar dates following lastDate,
// formatted YYYY-MM-DD. Weekends and holidays are included.
func ExtrapolateDates(lastDate string, count int) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: count must be >= 0, got %d", domain.ErrInvalidArgument, count)
	}
	t, err := util.ParseDate(lastDate)
	if err != nil {
		return nil, err
	}
	return ExtrapolateFrom(t, count)
}

// ExtrapolateFrom is ExtrapolateDates for an already parsed date. Only the
// calendar date of lastDate is used.
func ExtrapolateFrom(lastDate time.Time, count int) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: count must be >= 0, got %d", domain.ErrInvalidArgument, count)
	}
	if lastDate.IsZero() {
		return nil, fmt.Errorf("%w: missing last date", domain.ErrInvalidArgument)
	}

	start := util.ToDate(lastDate)
	out := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, util.FormatDate(start.AddDate(0, 0, i)))
	}

	return out, nil
}
