package api

import (
	"errors"
	"fmt"

	"stockforecast/internal/domain"

	"github.com/gin-gonic/gin"
)

type selectStockRequest struct {
	Code string `json:"code"`
}

// selectStock runs the whole selection pipeline before responding. If a
// newer selection overtook this one, the response is the newer session
// state with discarded set.
func (m ApiHandler) selectStock(c *gin.Context) {
	session, err := m.sessionFromPath(c)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	var requestBody selectStockRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err), c)
		return
	}
	if requestBody.Code == "" {
		returnErrorJson(fmt.Errorf("%w: code is required", domain.ErrInvalidArgument), c)
		return
	}

	err = session.SelectStock(c.Request.Context(), requestBody.Code)
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
