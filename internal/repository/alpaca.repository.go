package repository

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"stockforecast/internal/domain"
	"stockforecast/internal/logger"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// barsClient is the part of *marketdata.Client the repository uses.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

func NewAlpacaRepository(apiKey, apiSecret string, endpoint string, start time.Time) HistoricalRepository {
	mdClient := marketdata.NewClient(marketdata.ClientOpts{
		BaseURL:   endpoint,
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return alpacaRepositoryHandler{
		MdClient: mdClient,
		Start:    start,
		Now:      time.Now,
	}
}

type alpacaRepositoryHandler struct {
	MdClient barsClient
	Start    time.Time
	Now      func() time.Time
}

func (h alpacaRepositoryHandler) GetHistorical(ctx context.Context, code string) (*domain.HistoricalSeries, error) {
	log := logger.FromContext(ctx)

	// the free data plan rejects bars newer than 15 minutes
	end := h.Now().Add(-15 * time.Minute)
	bars, err := h.MdClient.GetBars(code, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     h.Start,
		End:       end,
	})
	if err != nil {
		return nil, domain.NewRemoteFetchError("get alpaca bars", code, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewRemoteFetchError("get alpaca bars", code, err)
	}

	points := make([]domain.PricePoint, 0, len(bars))
	for _, bar := range bars {
		if bar.Close <= 0 {
			log.Warnf("skipping alpaca bar for %s on %s with close %f", code, bar.Timestamp.Format(time.DateOnly), bar.Close)
			continue
		}
		points = append(points, domain.PricePoint{
			// daily bars are stamped at midnight New York time
			Date:  bar.Timestamp.In(newYork()),
			Price: bar.Close,
		})
	}

	series, err := normalizeSeries(code, points)
	if err != nil {
		return nil, domain.NewRemoteFetchError("get alpaca bars", code, fmt.Errorf("invalid bars: %w", err))
	}
	if series.Len() == 0 {
		return nil, domain.NewRemoteFetchError("get alpaca bars", code, domain.ErrEmptyHistoricalSeries)
	}
	log.Infof("loaded %d alpaca bars for %s", series.Len(), code)

	return series, nil
}

func newYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}
