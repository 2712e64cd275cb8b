package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stockforecast/internal/domain"
	"stockforecast/internal/logger"
	"stockforecast/internal/repository"
	l2_service "stockforecast/internal/service/l2"

	"github.com/google/uuid"
)

type SessionState string

const (
	SessionStateIdle             SessionState = "IDLE"
	SessionStateStocksLoaded     SessionState = "STOCKS_LOADED"
	SessionStateStockSelected    SessionState = "STOCK_SELECTED"
	SessionStateHistoricalLoaded SessionState = "HISTORICAL_LOADED"
	SessionStateTraining         SessionState = "TRAINING"
	SessionStatePredictionReady  SessionState = "PREDICTION_READY"
	SessionStateFailed           SessionState = "FAILED"
)

const stockInfoWorkers = 10

// SessionSnapshot is a point-in-time copy of a session. Chart is shared
// with the session but never modified after it is published.
type SessionSnapshot struct {
	ID            uuid.UUID                  `json:"id"`
	State         SessionState               `json:"state"`
	Stocks        []domain.Stock             `json:"stocks"`
	SelectedStock *domain.Stock              `json:"selectedStock"`
	Token         uint64                     `json:"token"`
	Chart         *domain.ChartDescriptor    `json:"chart"`
	Error         error                      `json:"-"`
	Profile       *domain.PerformanceProfile `json:"profile,omitempty"`
	UpdatedAt     time.Time                  `json:"updatedAt"`
}

type SessionDependencies struct {
	ForecastRepository   repository.ForecastRepository
	HistoricalRepository repository.HistoricalRepository
	ChartService         l2_service.ChartService
}

// PredictionSession drives one user's stock list, selection and
// prediction. Every remote call runs without the lock held; results are
// only applied if no newer request was issued in the meantime.
type PredictionSession struct {
	ID                   uuid.UUID
	ForecastRepository   repository.ForecastRepository
	HistoricalRepository repository.HistoricalRepository
	ChartService         l2_service.ChartService

	mu            sync.Mutex
	state         SessionState
	stocks        []domain.Stock
	selectedStock *domain.Stock
	token         uint64
	chart         *domain.ChartDescriptor
	err           error
	profile       *domain.PerformanceProfile
	updatedAt     time.Time
}

func NewPredictionSession(id uuid.UUID, deps SessionDependencies) *PredictionSession {
	historicalRepository := deps.HistoricalRepository
	if historicalRepository == nil {
		historicalRepository = deps.ForecastRepository
	}
	return &PredictionSession{
		ID:                   id,
		ForecastRepository:   deps.ForecastRepository,
		HistoricalRepository: historicalRepository,
		ChartService:         deps.ChartService,
		state:                SessionStateIdle,
		updatedAt:            time.Now().UTC(),
	}
}

func (s *PredictionSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := SessionSnapshot{
		ID:        s.ID,
		State:     s.state,
		Stocks:    make([]domain.Stock, len(s.stocks)),
		Token:     s.token,
		Chart:     s.chart,
		Error:     s.err,
		UpdatedAt: s.updatedAt,
	}
	copy(out.Stocks, s.stocks)
	if s.selectedStock != nil {
		selected := *s.selectedStock
		out.SelectedStock = &selected
	}
	if s.profile != nil {
		profile := s.profile.Copy()
		out.Profile = &profile
	}
	return out
}

// LastActivity is when the session state last changed.
func (s *PredictionSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// issue starts a new request. Any result still in flight for an older
// token will be discarded.
func (s *PredictionSession) issue() uint64 {
	s.token++
	s.updatedAt = time.Now().UTC()
	return s.token
}

// apply runs fn under the lock if token is still current.
func (s *PredictionSession) apply(token uint64, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return fmt.Errorf("%w: request %d, current %d", domain.ErrStaleSelection, token, s.token)
	}
	fn()
	s.updatedAt = time.Now().UTC()
	return nil
}

// fail moves the session to Failed and returns err, unless the request
// was superseded.
func (s *PredictionSession) fail(token uint64, err error) error {
	if staleErr := s.apply(token, func() {
		s.state = SessionStateFailed
		s.err = err
	}); staleErr != nil {
		return staleErr
	}
	return err
}

func (s *PredictionSession) LoadStocks(ctx context.Context) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	switch s.state {
	case SessionStateIdle, SessionStateStocksLoaded, SessionStateFailed:
	default:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot load stocks in state %s", domain.ErrInvalidArgument, state)
	}
	token := s.issue()
	s.mu.Unlock()

	stocks, err := s.ForecastRepository.ListStocks(ctx)
	if err != nil {
		log.Errorf("failed to list stocks: %v", err)
		return s.fail(token, err)
	}
	stocks = s.resolveNames(ctx, stocks)

	err = s.apply(token, func() {
		s.state = SessionStateStocksLoaded
		s.stocks = stocks
		s.selectedStock = nil
		s.chart = nil
		s.err = nil
		s.profile = nil
	})
	if err != nil {
		return err
	}
	log.Infof("session %s loaded %d stocks", s.ID, len(stocks))

	return nil
}

// resolveNames looks up display names concurrently. A failed lookup keeps
// whatever name the list had, or the code.
func (s *PredictionSession) resolveNames(ctx context.Context, stocks []domain.Stock) []domain.Stock {
	log := logger.FromContext(ctx)
	out := make([]domain.Stock, len(stocks))
	copy(out, stocks)

	type workResult struct {
		Index int
		Name  string
		Err   error
	}

	inputCh := make(chan int, len(out))
	resultCh := make(chan workResult, len(out))
	for i := range out {
		inputCh <- i
	}
	close(inputCh)

	numGoroutines := stockInfoWorkers
	if len(out) < numGoroutines {
		numGoroutines = len(out)
	}
	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range inputCh {
				if ctx.Err() != nil {
					resultCh <- workResult{Index: index, Err: ctx.Err()}
					continue
				}
				info, err := s.ForecastRepository.GetStockInfo(ctx, out[index].Code)
				res := workResult{Index: index, Err: err}
				if err == nil {
					res.Name = info.Name
				}
				resultCh <- res
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		if res.Err != nil {
			log.Warnf("failed to get name for %s: %v", out[res.Index].Code, res.Err)
		} else if res.Name != "" {
			out[res.Index].Name = res.Name
		}
		if out[res.Index].Name == "" {
			out[res.Index].Name = out[res.Index].Code
		}
	}

	return out
}

// SelectStock fetches history, retrains and predicts for code. If another
// selection starts before this one finishes, the older one returns
// ErrStaleSelection and leaves the session untouched.
func (s *PredictionSession) SelectStock(ctx context.Context, code string) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	if s.state == SessionStateIdle {
		s.mu.Unlock()
		return fmt.Errorf("%w: stocks have not been loaded", domain.ErrInvalidArgument)
	}
	var stock *domain.Stock
	for _, st := range s.stocks {
		if st.Code == code {
			stock = &st
			break
		}
	}
	if stock == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: unknown stock %q", domain.ErrInvalidArgument, code)
	}
	token := s.issue()
	s.state = SessionStateStockSelected
	s.selectedStock = stock
	s.chart = nil
	s.err = nil
	profile := domain.NewPeformanceProfile()
	s.profile = nil
	s.mu.Unlock()

	log.Infof("session %s selected %s (request %d)", s.ID, code, token)

	historical, err := s.HistoricalRepository.GetHistorical(ctx, code)
	if err != nil {
		log.Errorf("failed to get historical prices for %s: %v", code, err)
		return s.fail(token, err)
	}
	profile.Add("historical loaded")

	chart, err := s.ChartService.BuildFromPrediction(domain.Prediction{
		Symbol:     code,
		Historical: *historical,
	}, code)
	if err != nil {
		return s.fail(token, err)
	}
	profile.Add("historical chart assembled")

	err = s.apply(token, func() {
		s.state = SessionStateHistoricalLoaded
		s.chart = chart
	})
	if err != nil {
		return err
	}

	return s.predict(ctx, token, code, profile)
}

// RequestPrediction re-runs retrain and prediction for the selected stock.
func (s *PredictionSession) RequestPrediction(ctx context.Context) error {
	s.mu.Lock()
	if s.selectedStock == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no stock selected", domain.ErrInvalidArgument)
	}
	switch s.state {
	case SessionStateHistoricalLoaded, SessionStatePredictionReady, SessionStateFailed:
	default:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot predict in state %s", domain.ErrInvalidArgument, state)
	}
	code := s.selectedStock.Code
	token := s.issue()
	s.err = nil
	s.mu.Unlock()

	return s.predict(ctx, token, code, domain.NewPeformanceProfile())
}

func (s *PredictionSession) predict(ctx context.Context, token uint64, code string, profile *domain.PerformanceProfile) error {
	log := logger.FromContext(ctx)

	err := s.apply(token, func() {
		s.state = SessionStateTraining
	})
	if err != nil {
		return err
	}

	// a failed retrain still leaves the previous model to predict with
	if err := s.ForecastRepository.TrainModel(ctx, code); err != nil {
		log.Warnf("failed to train model for %s: %v", code, err)
	}
	profile.Add("model trained")
	if err := s.apply(token, func() {}); err != nil {
		return err
	}

	prediction, err := s.ForecastRepository.Predict(ctx, code)
	if err != nil {
		log.Errorf("failed to get prediction for %s: %v", code, err)
		return s.fail(token, err)
	}
	profile.Add("prediction fetched")

	chart, err := s.ChartService.BuildFromPrediction(*prediction, code)
	if err != nil {
		if errors.Is(err, domain.ErrInternalInconsistency) {
			log.Errorf("inconsistent chart for %s: %v", code, err)
		}
		return s.fail(token, fmt.Errorf("failed to assemble chart for %s: %w", code, err))
	}
	profile.Add("chart assembled")
	profile.End()

	err = s.apply(token, func() {
		s.state = SessionStatePredictionReady
		s.chart = chart
		s.err = nil
		s.profile = profile
	})
	if err != nil {
		return err
	}
	log.Infof("session %s prediction ready for %s in %dms", s.ID, code, profile.TotalMs)

	return nil
}
