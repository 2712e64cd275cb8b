package repository

//go:generate mockgen -source=forecast.repository.go -destination=mocks/mock_forecast.repository.go

import (
	"context"
	"errors"
	"fmt"
	"math"

	"stockforecast/internal/domain"
	"stockforecast/internal/logger"
	"stockforecast/pkg/forecast"
)

type ForecastRepository interface {
	ListStocks(ctx context.Context) ([]domain.Stock, error)
	GetStockInfo(ctx context.Context, code string) (*domain.StockInfo, error)
	GetHistorical(ctx context.Context, code string) (*domain.HistoricalSeries, error)
	TrainModel(ctx context.Context, code string) error
	Predict(ctx context.Context, code string) (*domain.Prediction, error)
}

// NewForecastRepository validates every forecasting service response
// before it reaches the domain. Predictions keep at most maxHistory
// historical points; zero means no limit.
func NewForecastRepository(client forecast.Client, maxHistory int) ForecastRepository {
	return forecastRepositoryHandler{
		Client:     client,
		MaxHistory: maxHistory,
	}
}

type forecastRepositoryHandler struct {
	Client     forecast.Client
	MaxHistory int
}

func (h forecastRepositoryHandler) ListStocks(ctx context.Context) ([]domain.Stock, error) {
	response, err := h.Client.ListStocks(ctx)
	if err != nil {
		return nil, remoteError("list stocks", "", err)
	}

	out := make([]domain.Stock, 0, len(response))
	seen := map[string]bool{}
	for i, s := range response {
		if s.Code == "" {
			return nil, remoteError("list stocks", "", fmt.Errorf("stock at index %d has no code", i))
		}
		if seen[s.Code] {
			logger.FromContext(ctx).Warnf("duplicate stock code %s in stock list", s.Code)
			continue
		}
		seen[s.Code] = true
		out = append(out, domain.Stock{
			Code: s.Code,
			Name: s.Name,
		})
	}

	return out, nil
}

func (h forecastRepositoryHandler) GetStockInfo(ctx context.Context, code string) (*domain.StockInfo, error) {
	response, err := h.Client.GetStockInfo(ctx, code)
	if err != nil {
		return nil, remoteError("get stock info", code, err)
	}
	return &domain.StockInfo{
		Code: code,
		Name: response.Name,
	}, nil
}

func (h forecastRepositoryHandler) GetHistorical(ctx context.Context, code string) (*domain.HistoricalSeries, error) {
	response, err := h.Client.GetHistorical(ctx, code)
	if err != nil {
		return nil, remoteError("get historical prices", code, err)
	}

	symbol := response.Symbol
	if symbol == "" {
		symbol = code
	}
	series, err := seriesFromStrings(symbol, response.Labels, response.Prices)
	if err != nil {
		return nil, remoteError("get historical prices", code, err)
	}
	if series.Len() == 0 {
		return nil, remoteError("get historical prices", code, domain.ErrEmptyHistoricalSeries)
	}

	return series, nil
}

func (h forecastRepositoryHandler) TrainModel(ctx context.Context, code string) error {
	response, err := h.Client.TrainModel(ctx, code)
	if err != nil {
		return remoteError("train model", code, err)
	}
	if response.Message != "" {
		logger.FromContext(ctx).Infof("train model for %s: %s", code, response.Message)
	}
	return nil
}

func (h forecastRepositoryHandler) Predict(ctx context.Context, code string) (*domain.Prediction, error) {
	response, err := h.Client.Predict(ctx, code)
	if err != nil {
		return nil, remoteError("predict", code, err)
	}

	symbol := response.Symbol
	if symbol == "" {
		symbol = code
	}
	historical, err := seriesFromStrings(symbol, response.HistoricalDates, response.HistoricalPrices)
	if err != nil {
		return nil, remoteError("predict", code, err)
	}
	if historical.Len() == 0 {
		return nil, remoteError("predict", code, domain.ErrEmptyHistoricalSeries)
	}
	if h.MaxHistory > 0 {
		trimmed := historical.Tail(h.MaxHistory)
		historical = &trimmed
	}

	predicted := make([]float64, len(response.PredictedPrices))
	for i, p := range response.PredictedPrices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, remoteError("predict", code, fmt.Errorf("%w: predicted price %v at index %d", domain.ErrInvalidArgument, p, i))
		}
		predicted[i] = p
	}
	if len(response.PredictedDates) > 0 && len(response.PredictedDates) != len(predicted) {
		logger.FromContext(ctx).Warnf(
			"predict for %s returned %d predicted dates for %d prices; dates are derived locally",
			code,
			len(response.PredictedDates),
			len(predicted),
		)
	}

	return &domain.Prediction{
		Symbol:     symbol,
		Historical: *historical,
		Predicted:  predicted,
	}, nil
}

func remoteError(op, code string, err error) *domain.RemoteFetchError {
	out := domain.NewRemoteFetchError(op, code, err)
	statusErr := forecast.StatusError{}
	if errors.As(err, &statusErr) {
		out.StatusCode = statusErr.StatusCode
		out.Message = statusErr.Message
	}
	return out
}
