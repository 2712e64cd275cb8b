package api

import (
	"fmt"

	"stockforecast/internal/domain"
	l1_service "stockforecast/internal/service/l1"
	"stockforecast/internal/util"

	"github.com/gin-gonic/gin"
)

type extrapolateRequest struct {
	LastDate string `json:"lastDate"`
	Count    *int   `json:"count"`
}

type extrapolateResponse struct {
	Dates []string `json:"dates"`
}

func (m ApiHandler) extrapolate(c *gin.Context) {
	var requestBody extrapolateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err), c)
		return
	}
	if requestBody.Count == nil {
		returnErrorJson(fmt.Errorf("%w: count is required", domain.ErrInvalidArgument), c)
		return
	}
	if maxHorizon := m.maxHorizon(); *requestBody.Count > maxHorizon {
		returnErrorJson(fmt.Errorf("%w: count %d exceeds the maximum of %d", domain.ErrInvalidArgument, *requestBody.Count, maxHorizon), c)
		return
	}

	dates, err := l1_service.ExtrapolateDates(requestBody.LastDate, *requestBody.Count)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, extrapolateResponse{
		Dates: dates,
	})
}

func (m ApiHandler) maxHorizon() int {
	if m.MaxHorizon > 0 {
		return m.MaxHorizon
	}
	return util.DefaultMaxHorizon
}
