package app

import (
	"context"
	"errors"
	"testing"

	"stockforecast/internal/domain"
	mock_repository "stockforecast/internal/repository/mocks"
	l2_service "stockforecast/internal/service/l2"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func historicalSeries(t *testing.T, symbol string, dates []string, prices []float64) *domain.HistoricalSeries {
	t.Helper()
	out, err := domain.NewHistoricalSeries(symbol, dates, prices)
	require.NoError(t, err)
	return out
}

func newTestSession(repo *mock_repository.MockForecastRepository) *PredictionSession {
	return NewPredictionSession(uuid.New(), SessionDependencies{
		ForecastRepository: repo,
		ChartService:       l2_service.NewChartService(domain.StyleHints{}),
	})
}

// loadedSession returns a session that already listed AAPL and MSFT.
func loadedSession(t *testing.T, repo *mock_repository.MockForecastRepository) *PredictionSession {
	t.Helper()
	repo.EXPECT().
		ListStocks(gomock.Any()).
		Return([]domain.Stock{{Code: "AAPL"}, {Code: "MSFT"}}, nil)
	repo.EXPECT().
		GetStockInfo(gomock.Any(), "AAPL").
		Return(&domain.StockInfo{Code: "AAPL", Name: "Apple Inc."}, nil)
	repo.EXPECT().
		GetStockInfo(gomock.Any(), "MSFT").
		Return(&domain.StockInfo{Code: "MSFT", Name: "Microsoft"}, nil)

	session := newTestSession(repo)
	require.NoError(t, session.LoadStocks(context.Background()))
	return session
}

func aaplPrediction(t *testing.T) *domain.Prediction {
	return &domain.Prediction{
		Symbol:     "AAPL",
		Historical: *historicalSeries(t, "AAPL", []string{"2024-01-01", "2024-01-02"}, []float64{100, 102}),
		Predicted:  []float64{105, 107},
	}
}

func TestPredictionSession_LoadStocks(t *testing.T) {
	ctx := context.Background()

	t.Run("name lookups are best effort", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		repo.EXPECT().
			ListStocks(gomock.Any()).
			Return([]domain.Stock{{Code: "AAPL"}, {Code: "MSFT"}, {Code: "TSLA", Name: "Tesla"}}, nil)
		repo.EXPECT().
			GetStockInfo(gomock.Any(), "AAPL").
			Return(&domain.StockInfo{Code: "AAPL", Name: "Apple Inc."}, nil)
		repo.EXPECT().
			GetStockInfo(gomock.Any(), "MSFT").
			Return(nil, &domain.RemoteFetchError{Op: "get stock info", Code: "MSFT", StatusCode: 500})
		repo.EXPECT().
			GetStockInfo(gomock.Any(), "TSLA").
			Return(nil, errors.New("timeout"))

		session := newTestSession(repo)
		require.NoError(t, session.LoadStocks(ctx))

		snapshot := session.Snapshot()
		require.Equal(t, SessionStateStocksLoaded, snapshot.State)
		require.Nil(t, snapshot.Error)
		require.Equal(t, "", cmp.Diff([]domain.Stock{
			{Code: "AAPL", Name: "Apple Inc."},
			{Code: "MSFT", Name: "MSFT"},
			{Code: "TSLA", Name: "Tesla"},
		}, snapshot.Stocks))
	})

	t.Run("list failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		remoteErr := domain.NewRemoteFetchError("list stocks", "", errors.New("connection refused"))
		repo.EXPECT().ListStocks(gomock.Any()).Return(nil, remoteErr)

		session := newTestSession(repo)
		err := session.LoadStocks(ctx)
		require.ErrorIs(t, err, domain.ErrRemoteFetchFailure)

		snapshot := session.Snapshot()
		require.Equal(t, SessionStateFailed, snapshot.State)
		require.ErrorIs(t, snapshot.Error, domain.ErrRemoteFetchFailure)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		snapshot := session.Snapshot()
		snapshot.Stocks[0].Name = "changed"
		require.Equal(t, "Apple Inc.", session.Snapshot().Stocks[0].Name)
	})
}

func TestPredictionSession_SelectStock(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		gomock.InOrder(
			repo.EXPECT().
				GetHistorical(gomock.Any(), "AAPL").
				Return(historicalSeries(t, "AAPL", []string{"2024-01-01", "2024-01-02"}, []float64{100, 102}), nil),
			repo.EXPECT().TrainModel(gomock.Any(), "AAPL").Return(nil),
			repo.EXPECT().Predict(gomock.Any(), "AAPL").Return(aaplPrediction(t), nil),
		)

		require.NoError(t, session.SelectStock(ctx, "AAPL"))

		snapshot := session.Snapshot()
		require.Equal(t, SessionStatePredictionReady, snapshot.State)
		require.Equal(t, "AAPL", snapshot.SelectedStock.Code)
		require.Nil(t, snapshot.Error)
		require.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}, snapshot.Chart.Labels)

		predicted, ok := snapshot.Chart.SeriesByRole(domain.SeriesRolePredicted)
		require.True(t, ok)
		require.Equal(t, "AAPL (predicted)", predicted.Name)
		require.Equal(t, 107.0, predicted.Values[3].ValueOrZero())

		require.NotNil(t, snapshot.Profile)
		require.Len(t, snapshot.Profile.Events, 5)
	})

	t.Run("historical chart is published before training", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		var duringTraining SessionSnapshot
		repo.EXPECT().
			GetHistorical(gomock.Any(), "AAPL").
			Return(historicalSeries(t, "AAPL", []string{"2024-01-01", "2024-01-02"}, []float64{100, 102}), nil)
		repo.EXPECT().
			TrainModel(gomock.Any(), "AAPL").
			DoAndReturn(func(ctx context.Context, code string) error {
				duringTraining = session.Snapshot()
				return nil
			})
		repo.EXPECT().Predict(gomock.Any(), "AAPL").Return(aaplPrediction(t), nil)

		require.NoError(t, session.SelectStock(ctx, "AAPL"))

		require.Equal(t, SessionStateTraining, duringTraining.State)
		require.Equal(t, []string{"2024-01-01", "2024-01-02"}, duringTraining.Chart.Labels)
		require.Equal(t, 0, duringTraining.Chart.Summary.HorizonDays)
	})

	t.Run("train failure is not fatal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		repo.EXPECT().
			GetHistorical(gomock.Any(), "AAPL").
			Return(historicalSeries(t, "AAPL", []string{"2024-01-02"}, []float64{102}), nil)
		repo.EXPECT().
			TrainModel(gomock.Any(), "AAPL").
			Return(domain.NewRemoteFetchError("train model", "AAPL", errors.New("busy")))
		repo.EXPECT().Predict(gomock.Any(), "AAPL").Return(aaplPrediction(t), nil)

		require.NoError(t, session.SelectStock(ctx, "AAPL"))
		require.Equal(t, SessionStatePredictionReady, session.Snapshot().State)
	})

	t.Run("predict failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		remoteErr := &domain.RemoteFetchError{Op: "predict", Code: "AAPL", StatusCode: 500, Message: "model missing"}
		repo.EXPECT().
			GetHistorical(gomock.Any(), "AAPL").
			Return(historicalSeries(t, "AAPL", []string{"2024-01-02"}, []float64{102}), nil)
		repo.EXPECT().TrainModel(gomock.Any(), "AAPL").Return(nil)
		repo.EXPECT().Predict(gomock.Any(), "AAPL").Return(nil, remoteErr)

		err := session.SelectStock(ctx, "AAPL")
		require.ErrorIs(t, err, domain.ErrRemoteFetchFailure)

		snapshot := session.Snapshot()
		require.Equal(t, SessionStateFailed, snapshot.State)
		require.ErrorContains(t, snapshot.Error, "model missing")
		require.Equal(t, "AAPL", snapshot.SelectedStock.Code)
	})

	t.Run("historical failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		repo.EXPECT().
			GetHistorical(gomock.Any(), "AAPL").
			Return(nil, domain.NewRemoteFetchError("get historical prices", "AAPL", errors.New("eof")))

		err := session.SelectStock(ctx, "AAPL")
		require.ErrorIs(t, err, domain.ErrRemoteFetchFailure)
		require.Equal(t, SessionStateFailed, session.Snapshot().State)
		require.Nil(t, session.Snapshot().Chart)
	})

	t.Run("unknown stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		err := session.SelectStock(ctx, "NOPE")
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		require.Equal(t, SessionStateStocksLoaded, session.Snapshot().State)
	})

	t.Run("before stocks are loaded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := newTestSession(repo)

		err := session.SelectStock(ctx, "AAPL")
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		require.Equal(t, SessionStateIdle, session.Snapshot().State)
	})
}

func TestPredictionSession_staleSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("older historical response is discarded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		started := make(chan struct{})
		release := make(chan struct{})
		repo.EXPECT().
			GetHistorical(gomock.Any(), "AAPL").
			DoAndReturn(func(ctx context.Context, code string) (*domain.HistoricalSeries, error) {
				close(started)
				<-release
				return historicalSeries(t, "AAPL", []string{"2024-01-01"}, []float64{100}), nil
			})
		repo.EXPECT().
			GetHistorical(gomock.Any(), "MSFT").
			Return(historicalSeries(t, "MSFT", []string{"2024-01-01"}, []float64{370}), nil)
		repo.EXPECT().TrainModel(gomock.Any(), "MSFT").Return(nil)
		repo.EXPECT().
			Predict(gomock.Any(), "MSFT").
			Return(&domain.Prediction{
				Symbol:     "MSFT",
				Historical: *historicalSeries(t, "MSFT", []string{"2024-01-01"}, []float64{370}),
				Predicted:  []float64{372},
			}, nil)

		errCh := make(chan error, 1)
		go func() {
			errCh <- session.SelectStock(ctx, "AAPL")
		}()
		<-started

		require.NoError(t, session.SelectStock(ctx, "MSFT"))
		close(release)
		require.ErrorIs(t, <-errCh, domain.ErrStaleSelection)

		snapshot := session.Snapshot()
		require.Equal(t, SessionStatePredictionReady, snapshot.State)
		require.Equal(t, "MSFT", snapshot.SelectedStock.Code)
		historical, ok := snapshot.Chart.SeriesByRole(domain.SeriesRoleHistorical)
		require.True(t, ok)
		require.Equal(t, "MSFT", historical.Name)
		require.Equal(t, 370.0, historical.Values[0].ValueOrZero())
	})

	t.Run("older prediction failure does not fail the session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		started := make(chan struct{})
		release := make(chan struct{})
		repo.EXPECT().
			GetHistorical(gomock.Any(), "AAPL").
			Return(historicalSeries(t, "AAPL", []string{"2024-01-01"}, []float64{100}), nil)
		repo.EXPECT().TrainModel(gomock.Any(), "AAPL").Return(nil)
		repo.EXPECT().
			Predict(gomock.Any(), "AAPL").
			DoAndReturn(func(ctx context.Context, code string) (*domain.Prediction, error) {
				close(started)
				<-release
				return nil, domain.NewRemoteFetchError("predict", "AAPL", errors.New("late failure"))
			})
		repo.EXPECT().
			GetHistorical(gomock.Any(), "MSFT").
			Return(historicalSeries(t, "MSFT", []string{"2024-01-01"}, []float64{370}), nil)
		repo.EXPECT().TrainModel(gomock.Any(), "MSFT").Return(nil)
		repo.EXPECT().
			Predict(gomock.Any(), "MSFT").
			Return(&domain.Prediction{
				Symbol:     "MSFT",
				Historical: *historicalSeries(t, "MSFT", []string{"2024-01-01"}, []float64{370}),
				Predicted:  []float64{372},
			}, nil)

		errCh := make(chan error, 1)
		go func() {
			errCh <- session.SelectStock(ctx, "AAPL")
		}()
		<-started

		require.NoError(t, session.SelectStock(ctx, "MSFT"))
		close(release)
		require.ErrorIs(t, <-errCh, domain.ErrStaleSelection)

		snapshot := session.Snapshot()
		require.Equal(t, SessionStatePredictionReady, snapshot.State)
		require.Nil(t, snapshot.Error)
		require.Equal(t, "MSFT", snapshot.SelectedStock.Code)
	})
}

func TestPredictionSession_RequestPrediction(t *testing.T) {
	ctx := context.Background()

	t.Run("re-runs for the selected stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		repo.EXPECT().
			GetHistorical(gomock.Any(), "AAPL").
			Return(historicalSeries(t, "AAPL", []string{"2024-01-01", "2024-01-02"}, []float64{100, 102}), nil)
		repo.EXPECT().TrainModel(gomock.Any(), "AAPL").Return(nil).Times(2)
		repo.EXPECT().Predict(gomock.Any(), "AAPL").Return(aaplPrediction(t), nil).Times(2)

		require.NoError(t, session.SelectStock(ctx, "AAPL"))
		first := session.Snapshot().Token

		require.NoError(t, session.RequestPrediction(ctx))
		snapshot := session.Snapshot()
		require.Equal(t, SessionStatePredictionReady, snapshot.State)
		require.Greater(t, snapshot.Token, first)
	})

	t.Run("requires a selection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockForecastRepository(ctrl)
		session := loadedSession(t, repo)

		require.ErrorIs(t, session.RequestPrediction(ctx), domain.ErrInvalidArgument)
	})
}
