package api

import (
	"fmt"
	"time"

	"stockforecast/internal/app"
	"stockforecast/internal/domain"
	"stockforecast/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type sessionResponse struct {
	ID            uuid.UUID                  `json:"id"`
	State         app.SessionState           `json:"state"`
	Stocks        []domain.Stock             `json:"stocks"`
	SelectedStock *domain.Stock              `json:"selectedStock"`
	Token         uint64                     `json:"token"`
	Chart         *domain.ChartDescriptor    `json:"chart"`
	Error         *string                    `json:"error"`
	Profile       *domain.PerformanceProfile `json:"profile,omitempty"`
	UpdatedAt     time.Time                  `json:"updatedAt"`
	Discarded     bool                       `json:"discarded,omitempty"`
}

func newSessionResponse(snapshot app.SessionSnapshot) sessionResponse {
	out := sessionResponse{
		ID:            snapshot.ID,
		State:         snapshot.State,
		Stocks:        snapshot.Stocks,
		SelectedStock: snapshot.SelectedStock,
		Token:         snapshot.Token,
		Chart:         snapshot.Chart,
		Profile:       snapshot.Profile,
		UpdatedAt:     snapshot.UpdatedAt,
	}
	if snapshot.Error != nil {
		msg := snapshot.Error.Error()
		out.Error = &msg
	}
	return out
}

func (m ApiHandler) sessionFromPath(c *gin.Context) (*app.PredictionSession, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, c.Param("id"))
	}
	return m.SessionRegistry.Get(id)
}

func (m ApiHandler) createSession(c *gin.Context) {
	session := m.SessionRegistry.Create()

	if err := session.LoadStocks(c.Request.Context()); err != nil {
		if deleteErr := m.SessionRegistry.Delete(session.ID); deleteErr != nil {
			err = fmt.Errorf("%w (cleanup: %v)", err, deleteErr)
		}
		returnErrorJson(err, c)
		return
	}

	c.JSON(201, newSessionResponse(session.Snapshot()))
}

func (m ApiHandler) getSession(c *gin.Context) {
	session, err := m.sessionFromPath(c)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, newSessionResponse(session.Snapshot()))
}

func (m ApiHandler) deleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJson(fmt.Errorf("%w: %s", domain.ErrSessionNotFound, c.Param("id")), c)
		return
	}
	if err := m.SessionRegistry.Delete(id); err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, map[string]string{
		"message": "ok",
	})
}

// trackLatency stores the pipeline profile of a finished selection or
// prediction.
func (m ApiHandler) trackLatency(c *gin.Context, snapshot app.SessionSnapshot) {
	if m.LatencyTrackingRepository == nil || snapshot.Profile == nil {
		return
	}
	var requestID *uuid.UUID
	if v, ok := c.Get("requestID"); ok {
		id := v.(uuid.UUID)
		requestID = &id
	}

	ctx := c.Request.Context()
	if err := m.LatencyTrackingRepository.Add(ctx, snapshot.ID, *snapshot.Profile, requestID); err != nil {
		logger.FromContext(ctx).Warnf("failed to track latency for session %s: %v", snapshot.ID, err)
	}
}
