package repository

import (
	"context"
	"fmt"
	"time"

	"stockforecast/internal/domain"
	"stockforecast/internal/logger"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

type chartFetcher func(params *chart.Params) ([]finance.ChartBar, error)

func NewYahooRepository(start time.Time) HistoricalRepository {
	return yahooRepositoryHandler{
		Fetch: fetchChart,
		Start: start,
		Now:   time.Now,
	}
}

type yahooRepositoryHandler struct {
	Fetch chartFetcher
	Start time.Time
	Now   func() time.Time
}

func fetchChart(params *chart.Params) ([]finance.ChartBar, error) {
	iter := chart.Get(params)
	out := []finance.ChartBar{}
	for iter.Next() {
		out = append(out, *iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (h yahooRepositoryHandler) GetHistorical(ctx context.Context, code string) (*domain.HistoricalSeries, error) {
	start := h.Start
	now := h.Now()
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&now),
		Symbol:   code,
		Interval: datetime.OneDay,
	}

	bars, err := h.Fetch(params)
	if err != nil {
		return nil, domain.NewRemoteFetchError("get yahoo chart", code, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewRemoteFetchError("get yahoo chart", code, err)
	}

	points := make([]domain.PricePoint, 0, len(bars))
	for _, bar := range bars {
		price := bar.AdjClose
		if price.IsZero() {
			price = bar.Close
		}
		if !price.IsPositive() {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  time.Unix(int64(bar.Timestamp), 0).In(newYork()),
			Price: price.InexactFloat64(),
		})
	}

	series, err := normalizeSeries(code, points)
	if err != nil {
		return nil, domain.NewRemoteFetchError("get yahoo chart", code, fmt.Errorf("invalid bars: %w", err))
	}
	if series.Len() == 0 {
		return nil, domain.NewRemoteFetchError("get yahoo chart", code, domain.ErrEmptyHistoricalSeries)
	}
	logger.FromContext(ctx).Infof("loaded %d yahoo bars for %s", series.Len(), code)

	return series, nil
}
