package api

import (
	"github.com/gin-gonic/gin"
)

type getHistoricalResponse struct {
	Symbol string    `json:"symbol"`
	Labels []string  `json:"labels"`
	Prices []float64 `json:"prices"`
}

func (m ApiHandler) getHistorical(c *gin.Context) {
	code := c.Param("code")
	series, err := m.HistoricalRepository.GetHistorical(c.Request.Context(), code)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, getHistoricalResponse{
		Symbol: series.Symbol,
		Labels: series.Dates(),
		Prices: series.Prices(),
	})
}
