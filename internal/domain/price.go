package domain

import (
	"fmt"
	"math"
	"time"
)

type Stock struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type StockInfo struct {
	Code string
	Name string
}

// PricePoint is a single observed close. Date is always a UTC midnight.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// HistoricalSeries holds observed prices up to today, oldest first.
type HistoricalSeries struct {
	Symbol string
	Points []PricePoint
}

// NewHistoricalSeries builds a series from the parallel date/price arrays
// the forecasting service returns. Dates must be YYYY-MM-DD and strictly
// increasing, prices finite and non-negative.
func NewHistoricalSeries(symbol string, dates []string, prices []float64) (*HistoricalSeries, error) {
	if len(dates) != len(prices) {
		return nil, fmt.Errorf("%w: got %d dates and %d prices", ErrInvalidArgument, len(dates), len(prices))
	}

	points := make([]PricePoint, 0, len(dates))
	for i, d := range dates {
		date, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q at index %d: %w", ErrInvalidArgument, d, i, err)
		}
		price := prices[i]
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return nil, fmt.Errorf("%w: price %v at index %d", ErrInvalidArgument, price, i)
		}
		points = append(points, PricePoint{Date: date, Price: price})
	}

	series := &HistoricalSeries{
		Symbol: symbol,
		Points: points,
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	return series, nil
}

// Validate checks ordering and value constraints. An empty series is
// valid here; stitching is what requires an anchor point.
func (s HistoricalSeries) Validate() error {
	for i, p := range s.Points {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return fmt.Errorf("%w: non-finite price at index %d", ErrInvalidArgument, i)
		}
		if i > 0 && !p.Date.After(s.Points[i-1].Date) {
			return fmt.Errorf(
				"%w: dates not strictly increasing at index %d (%s after %s)",
				ErrInvalidArgument,
				i,
				p.Date.Format(time.DateOnly),
				s.Points[i-1].Date.Format(time.DateOnly),
			)
		}
	}
	return nil
}

func (s HistoricalSeries) Len() int {
	return len(s.Points)
}

func (s HistoricalSeries) Dates() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date.Format(time.DateOnly)
	}
	return out
}

func (s HistoricalSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

func (s HistoricalSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Tail returns a copy limited to the newest n points.
func (s HistoricalSeries) Tail(n int) HistoricalSeries {
	if n <= 0 || n >= len(s.Points) {
		return s
	}
	points := make([]PricePoint, n)
	copy(points, s.Points[len(s.Points)-n:])
	return HistoricalSeries{
		Symbol: s.Symbol,
		Points: points,
	}
}

// Prediction is a validated predict response. Predicted carries no dates;
// they are derived from the last historical date.
type Prediction struct {
	Symbol     string
	Historical HistoricalSeries
	Predicted  []float64
}
