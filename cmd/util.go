package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"stockforecast/api"
	"stockforecast/internal/app"
	"stockforecast/internal/domain"
	"stockforecast/internal/logger"
	"stockforecast/internal/repository"
	l2_service "stockforecast/internal/service/l2"
	"stockforecast/internal/util"
	"stockforecast/pkg/forecast"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func CloseDependencies(handler *api.ApiHandler) {
	if handler.RetrainScheduler != nil {
		handler.RetrainScheduler.Stop()
	}
	if handler.Db != nil {
		if err := handler.Db.Close(); err != nil {
			log.Fatalf("failed to close db: %v", err)
		}
	}
	_ = handler.Logger.Sync()
}

type dbRepositories struct {
	apiRequestRepository      repository.ApiRequestRepository
	latencyTrackingRepository repository.LatencyTrackingRepository
}

func openDb(ctx context.Context, cfg util.DatabaseConfig) (*sql.DB, *dbRepositories, error) {
	if cfg.Driver == "" {
		return nil, &dbRepositories{
			apiRequestRepository: repository.NewNoopApiRequestRepository(),
		}, nil
	}

	dbConn, err := sql.Open(cfg.Driver, cfg.Dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	if cfg.Driver == repository.DriverSqlite {
		dbConn.SetMaxOpenConns(1)
	}

	apiRequestRepository, err := repository.NewApiRequestRepository(ctx, dbConn, cfg.Driver)
	if err != nil {
		dbConn.Close()
		return nil, nil, err
	}
	latencyTrackingRepository, err := repository.NewLatencyTrackingRepository(ctx, dbConn, cfg.Driver)
	if err != nil {
		dbConn.Close()
		return nil, nil, err
	}

	return dbConn, &dbRepositories{
		apiRequestRepository:      apiRequestRepository,
		latencyTrackingRepository: latencyTrackingRepository,
	}, nil
}

func InitializeDependencies() (*api.ApiHandler, *util.Config, error) {
	cfg, err := util.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	lg := logger.New()
	ctx := logger.WithLogger(context.Background(), lg)

	forecastClient := forecast.NewClient(
		&http.Client{Timeout: time.Duration(cfg.Forecast.TimeoutSeconds) * time.Second},
		cfg.Forecast.BaseURL,
	)
	forecastRepository := repository.NewForecastRepository(forecastClient, cfg.Forecast.MaxHistory)
	historicalRepository, err := repository.NewHistoricalRepository(*cfg, forecastRepository)
	if err != nil {
		return nil, nil, err
	}

	dbConn, dbRepos, err := openDb(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	chartService := l2_service.NewChartService(domain.StyleHints{
		DateFormat: cfg.Chart.DateFormat,
		XAxisTitle: cfg.Chart.XAxisTitle,
		YAxisTitle: cfg.Chart.YAxisTitle,
	})

	sessionRegistry := app.NewSessionRegistry(app.SessionDependencies{
		ForecastRepository:   forecastRepository,
		HistoricalRepository: historicalRepository,
		ChartService:         chartService,
	})

	retrainScheduler := app.NewRetrainScheduler(
		ctx,
		forecastRepository,
		sessionRegistry,
		time.Duration(cfg.Schedule.SessionMaxIdleMinutes)*time.Minute,
	)
	if err := retrainScheduler.Register(cfg.Schedule.RetrainCron, cfg.Schedule.SessionPruneCron); err != nil {
		if dbConn != nil {
			dbConn.Close()
		}
		return nil, nil, err
	}

	apiHandler := &api.ApiHandler{
		Logger:                    lg,
		Db:                        dbConn,
		ForecastRepository:        forecastRepository,
		HistoricalRepository:      historicalRepository,
		ApiRequestRepository:      dbRepos.apiRequestRepository,
		LatencyTrackingRepository: dbRepos.latencyTrackingRepository,
		ChartService:              chartService,
		SessionRegistry:           sessionRegistry,
		RetrainScheduler:          retrainScheduler,
		MaxHorizon:                cfg.Forecast.MaxHorizon,
	}

	return apiHandler, cfg, nil
}
