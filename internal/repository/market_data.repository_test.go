package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockforecast/internal/domain"
	"stockforecast/internal/util"
	"stockforecast/pkg/forecast"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeBarsClient struct {
	bars []marketdata.Bar
	err  error
	req  marketdata.GetBarsRequest
}

func (f *fakeBarsClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.req = req
	return f.bars, f.err
}

func TestAlpacaRepository_GetHistorical(t *testing.T) {
	ctx := context.Background()
	loc := newYork()
	now := time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC)

	t.Run("happy path", func(t *testing.T) {
		fake := &fakeBarsClient{
			bars: []marketdata.Bar{
				{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, loc), Close: 185.64},
				{Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, loc), Close: 184.25},
				{Timestamp: time.Date(2024, 1, 4, 0, 0, 0, 0, loc), Close: 0},
			},
		}
		h := alpacaRepositoryHandler{
			MdClient: fake,
			Start:    util.NewDate(2024, 1, 1),
			Now:      func() time.Time { return now },
		}

		out, err := h.GetHistorical(ctx, "AAPL")
		require.NoError(t, err)
		require.Equal(t, []string{"2024-01-02", "2024-01-03"}, out.Dates())
		require.Equal(t, []float64{185.64, 184.25}, out.Prices())
		require.Equal(t, marketdata.OneDay, fake.req.TimeFrame)
		require.Equal(t, util.NewDate(2024, 1, 1), fake.req.Start)
		require.True(t, fake.req.End.Before(now))
	})

	t.Run("no usable bars", func(t *testing.T) {
		h := alpacaRepositoryHandler{
			MdClient: &fakeBarsClient{
				bars: []marketdata.Bar{
					{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, loc), Close: 0},
				},
			},
			Now: func() time.Time { return now },
		}
		_, err := h.GetHistorical(ctx, "AAPL")
		require.ErrorIs(t, err, domain.ErrRemoteFetchFailure)
		require.ErrorIs(t, err, domain.ErrEmptyHistoricalSeries)

		h.MdClient = &fakeBarsClient{}
		_, err = h.GetHistorical(ctx, "AAPL")
		require.ErrorIs(t, err, domain.ErrEmptyHistoricalSeries)
	})

	t.Run("client error", func(t *testing.T) {
		h := alpacaRepositoryHandler{
			MdClient: &fakeBarsClient{err: errors.New("forbidden")},
			Now:      func() time.Time { return now },
		}
		_, err := h.GetHistorical(ctx, "AAPL")
		require.ErrorIs(t, err, domain.ErrRemoteFetchFailure)
		require.ErrorContains(t, err, "forbidden")
	})
}

func TestYahooRepository_GetHistorical(t *testing.T) {
	ctx := context.Background()
	loc := newYork()

	t.Run("prefers adjusted close", func(t *testing.T) {
		var got *chart.Params
		h := yahooRepositoryHandler{
			Fetch: func(params *chart.Params) ([]finance.ChartBar, error) {
				got = params
				return []finance.ChartBar{
					{
						Timestamp: int(time.Date(2024, 1, 2, 9, 30, 0, 0, loc).Unix()),
						Close:     decimal.NewFromFloat(186),
						AdjClose:  decimal.NewFromFloat(185.5),
					},
					{
						Timestamp: int(time.Date(2024, 1, 3, 9, 30, 0, 0, loc).Unix()),
						Close:     decimal.NewFromFloat(184),
					},
				}, nil
			},
			Start: util.NewDate(2022, 1, 1),
			Now:   func() time.Time { return util.NewDate(2024, 1, 4) },
		}

		out, err := h.GetHistorical(ctx, "AAPL")
		require.NoError(t, err)
		require.Equal(t, "AAPL", got.Symbol)
		require.Equal(t, []string{"2024-01-02", "2024-01-03"}, out.Dates())
		require.Equal(t, []float64{185.5, 184}, out.Prices())
	})

	t.Run("empty bars", func(t *testing.T) {
		h := yahooRepositoryHandler{
			Fetch: func(params *chart.Params) ([]finance.ChartBar, error) {
				return []finance.ChartBar{}, nil
			},
			Now: time.Now,
		}
		_, err := h.GetHistorical(ctx, "AAPL")
		require.ErrorIs(t, err, domain.ErrRemoteFetchFailure)
		require.ErrorIs(t, err, domain.ErrEmptyHistoricalSeries)
	})

	t.Run("fetch error", func(t *testing.T) {
		h := yahooRepositoryHandler{
			Fetch: func(params *chart.Params) ([]finance.ChartBar, error) {
				return nil, errors.New("rate limited")
			},
			Now: time.Now,
		}
		_, err := h.GetHistorical(ctx, "AAPL")
		require.ErrorIs(t, err, domain.ErrRemoteFetchFailure)
	})
}

func TestNewHistoricalRepository(t *testing.T) {
	forecastRepository := NewForecastRepository(forecast.NewClient(nil, "http://127.0.0.1:1"), 0)

	t.Run("defaults to forecast service", func(t *testing.T) {
		out, err := NewHistoricalRepository(util.Config{}, forecastRepository)
		require.NoError(t, err)
		require.Equal(t, forecastRepository, out)
	})

	t.Run("yahoo", func(t *testing.T) {
		cfg := util.Config{Historical: util.HistoricalConfig{Source: util.HistoricalSourceYahoo, StartDate: "2022-01-01"}}
		out, err := NewHistoricalRepository(cfg, forecastRepository)
		require.NoError(t, err)
		require.IsType(t, yahooRepositoryHandler{}, out)
	})

	t.Run("alpaca", func(t *testing.T) {
		cfg := util.Config{Historical: util.HistoricalConfig{Source: util.HistoricalSourceAlpaca, StartDate: "2022-01-01"}}
		out, err := NewHistoricalRepository(cfg, forecastRepository)
		require.NoError(t, err)
		require.IsType(t, alpacaRepositoryHandler{}, out)
	})

	t.Run("unknown source", func(t *testing.T) {
		cfg := util.Config{Historical: util.HistoricalConfig{Source: "bloomberg"}}
		_, err := NewHistoricalRepository(cfg, forecastRepository)
		require.Error(t, err)
	})

	t.Run("bad start date", func(t *testing.T) {
		cfg := util.Config{Historical: util.HistoricalConfig{Source: util.HistoricalSourceYahoo, StartDate: "soon"}}
		_, err := NewHistoricalRepository(cfg, forecastRepository)
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}
