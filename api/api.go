package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stockforecast/internal/app"
	"stockforecast/internal/domain"
	"stockforecast/internal/logger"
	"stockforecast/internal/repository"
	l2_service "stockforecast/internal/service/l2"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	Logger                    *zap.SugaredLogger
	Db                        *sql.DB
	ForecastRepository        repository.ForecastRepository
	HistoricalRepository      repository.HistoricalRepository
	ApiRequestRepository      repository.ApiRequestRepository
	LatencyTrackingRepository repository.LatencyTrackingRepository
	ChartService              l2_service.ChartService
	SessionRegistry           *app.SessionRegistry
	RetrainScheduler          *app.RetrainScheduler
	MaxHorizon                int
}

const requestIDHeader = "X-Request-ID"

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.requestContextMiddleware)
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to stockforecast"})
	})
	router.GET("/stocks", m.listStocks)
	router.GET("/stock/:code", m.getStockInfo)
	router.GET("/stocks/:code", m.getHistorical)
	router.POST("/train/:code", m.trainModel)
	router.GET("/stocks/:code/predict", m.predict)
	router.POST("/chart", m.buildChart)
	router.POST("/extrapolate", m.extrapolate)

	router.POST("/sessions", m.createSession)
	router.GET("/sessions/:id", m.getSession)
	router.POST("/sessions/:id/select", m.selectStock)
	router.POST("/sessions/:id/predict", m.requestPrediction)
	router.DELETE("/sessions/:id", m.deleteSession)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	router := m.InitializeRouterEngine()
	return router.Run(fmt.Sprintf(":%d", port))
}

// errorStatusCode maps domain errors to HTTP statuses. Remote failures are
// checked first since a RemoteFetchError may also wrap a validation error
// raised on the collaborator's response.
func errorStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRemoteFetchFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrEmptyHistoricalSeries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, errorStatusCode(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	log := logger.FromContext(c.Request.Context())
	if code >= 500 {
		log.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	} else {
		log.Warnf("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) requestContextMiddleware(c *gin.Context) {
	requestID := uuid.New()
	if v, err := uuid.Parse(c.GetHeader(requestIDHeader)); err == nil {
		requestID = v
	}
	c.Set("requestID", requestID)
	c.Header(requestIDHeader, requestID.String())

	base := m.Logger
	if base == nil {
		base = zap.S()
	}
	log := base.With("requestID", requestID.String())
	c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

	c.Next()
}

func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	if m.ApiRequestRepository == nil {
		c.Next()
		return
	}
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	in := domain.ApiRequest{
		Method:    c.Request.Method,
		Route:     route,
		IpAddress: c.ClientIP(),
		StartTs:   time.Now().UTC(),
	}
	if v, ok := c.Get("requestID"); ok {
		in.RequestID = v.(uuid.UUID)
	}
	if sessionID, err := uuid.Parse(c.Param("id")); err == nil {
		in.SessionID = &sessionID
	}

	req, err := m.ApiRequestRepository.Add(ctx, in)
	if err != nil {
		log.Warnf("failed to log api request: %v", err)
	}

	c.Next()

	if req != nil {
		req.DurationMs = time.Since(in.StartTs).Milliseconds()
		req.StatusCode = c.Writer.Status()
		if err := m.ApiRequestRepository.Update(ctx, *req); err != nil {
			log.Warnf("failed to update api request: %v", err)
		}
	}
	log.Infow("request completed",
		"method", in.Method,
		"route", route,
		"status", c.Writer.Status(),
		"durationMs", time.Since(in.StartTs).Milliseconds(),
	)
}
