package api

import (
	"errors"

	"stockforecast/internal/domain"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) requestPrediction(c *gin.Context) {
	session, err := m.sessionFromPath(c)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	err = session.RequestPrediction(c.Request.Context())
	if errors.Is(err, domain.ErrStaleSelection) {
		out := newSessionResponse(session.Snapshot())
		out.Discarded = true
		c.JSON(200, out)
		return
	}
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	snapshot := session.Snapshot()
	m.trackLatency(c, snapshot)
	c.JSON(200, newSessionResponse(snapshot))
}
