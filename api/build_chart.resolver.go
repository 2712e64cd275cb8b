package api

import (
	"fmt"

	"stockforecast/internal/domain"

	"github.com/gin-gonic/gin"
)

type buildChartRequest struct {
	HistoricalDates  []string  `json:"historicalDates"`
	HistoricalPrices []float64 `json:"historicalPrices"`
	PredictedPrices  []float64 `json:"predictedPrices"`
	Label            string    `json:"label"`
}

func (m ApiHandler) buildChart(c *gin.Context) {
	var requestBody buildChartRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err), c)
		return
	}

	chart, err := m.ChartService.BuildPredictionChart(
		requestBody.HistoricalDates,
		requestBody.HistoricalPrices,
		requestBody.PredictedPrices,
		requestBody.Label,
	)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, chart)
}
