package app

import (
	"context"
	"fmt"
	"time"

	"stockforecast/internal/logger"
	"stockforecast/internal/repository"

	"github.com/robfig/cron/v3"
)

// RetrainScheduler retrains every listed stock on a schedule and prunes
// idle sessions. Cron specs take a leading seconds field.
type RetrainScheduler struct {
	Cron               *cron.Cron
	ForecastRepository repository.ForecastRepository
	Registry           *SessionRegistry
	MaxIdle            time.Duration
	Ctx                context.Context
}

func NewRetrainScheduler(
	ctx context.Context,
	forecastRepository repository.ForecastRepository,
	registry *SessionRegistry,
	maxIdle time.Duration,
) *RetrainScheduler {
	return &RetrainScheduler{
		Cron:               cron.New(cron.WithSeconds()),
		ForecastRepository: forecastRepository,
		Registry:           registry,
		MaxIdle:            maxIdle,
		Ctx:                ctx,
	}
}

// Register adds the retrain and prune jobs. An empty cron expression skips that job.
func (s *RetrainScheduler) Register(retrainCron, pruneCron string) error {
	if retrainCron != "" {
		if _, err := s.Cron.AddFunc(retrainCron, s.retrainTask); err != nil {
			return fmt.Errorf("register retrain task: %w", err)
		}
	}
	if pruneCron != "" && s.Registry != nil {
		if _, err := s.Cron.AddFunc(pruneCron, s.pruneTask); err != nil {
			return fmt.Errorf("register session prune task: %w", err)
		}
	}
	return nil
}

func (s *RetrainScheduler) Start() {
	s.Cron.Start()
	logger.FromContext(s.Ctx).Infof("scheduler started with %d jobs", len(s.Cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *RetrainScheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.FromContext(s.Ctx).Info("scheduler stopped")
}

// RetrainAll triggers training for every listed stock and returns how many
// succeeded. Individual failures are logged and do not stop the run.
func (s *RetrainScheduler) RetrainAll(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	stocks, err := s.ForecastRepository.ListStocks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stocks for retrain: %w", err)
	}

	trained := 0
	for _, stock := range stocks {
		if ctx.Err() != nil {
			return trained, ctx.Err()
		}
		if err := s.ForecastRepository.TrainModel(ctx, stock.Code); err != nil {
			log.Errorf("failed to retrain %s: %v", stock.Code, err)
			continue
		}
		trained++
	}
	log.Infof("retrained %d of %d stocks", trained, len(stocks))

	return trained, nil
}

func (s *RetrainScheduler) retrainTask() {
	if _, err := s.RetrainAll(s.Ctx); err != nil {
		logger.FromContext(s.Ctx).Errorf("retrain task: %v", err)
	}
}

func (s *RetrainScheduler) pruneTask() {
	pruned := s.Registry.PruneIdle(s.MaxIdle)
	if pruned > 0 {
		logger.FromContext(s.Ctx).Infof("pruned %d idle sessions", pruned)
	}
}
