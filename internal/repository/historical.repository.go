package repository

//go:generate mockgen -source=historical.repository.go -destination=mocks/mock_historical.repository.go

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stockforecast/internal/domain"
	"stockforecast/internal/util"
)

// HistoricalRepository serves the observed daily closes for a stock,
// oldest first.
type HistoricalRepository interface {
	GetHistorical(ctx context.Context, code string) (*domain.HistoricalSeries, error)
}

// NewHistoricalRepository picks the provider named by cfg.Historical.Source.
func NewHistoricalRepository(cfg util.Config, forecastRepository ForecastRepository) (HistoricalRepository, error) {
	switch cfg.Historical.Source {
	case "", util.HistoricalSourceForecast:
		return forecastRepository, nil
	case util.HistoricalSourceYahoo:
		start, err := util.ParseDate(cfg.Historical.StartDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse historical start date: %w", err)
		}
		return NewYahooRepository(start), nil
	case util.HistoricalSourceAlpaca:
		start, err := util.ParseDate(cfg.Historical.StartDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse historical start date: %w", err)
		}
		return NewAlpacaRepository(cfg.Alpaca.ApiKey, cfg.Alpaca.ApiSecret, cfg.Alpaca.Endpoint, start), nil
	}
	return nil, fmt.Errorf("unknown historical source %q", cfg.Historical.Source)
}

// normalizeSeries sorts provider points by date and keeps the latest value
// per calendar day. Providers occasionally return an intraday duplicate for
// the current session.
func normalizeSeries(symbol string, points []domain.PricePoint) (*domain.HistoricalSeries, error) {
	sorted := make([]domain.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make([]domain.PricePoint, 0, len(sorted))
	for _, p := range sorted {
		p.Date = util.ToDate(p.Date)
		if len(out) > 0 && out[len(out)-1].Date.Equal(p.Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}

	series := &domain.HistoricalSeries{
		Symbol: symbol,
		Points: out,
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

// seriesFromStrings builds a series from parallel arrays, tolerating
// timestamps where a plain date is expected.
func seriesFromStrings(symbol string, dates []string, prices []float64) (*domain.HistoricalSeries, error) {
	normalized := make([]string, len(dates))
	for i, d := range dates {
		t, err := util.ParseLooseDate(d)
		if err != nil {
			return nil, fmt.Errorf("date at index %d: %w", i, err)
		}
		normalized[i] = t.Format(time.DateOnly)
	}
	return domain.NewHistoricalSeries(symbol, normalized, prices)
}
