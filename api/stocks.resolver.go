package api

import (
	"github.com/gin-gonic/gin"
)

type getStockInfoResponse struct {
	Name string `json:"name"`
}

func (m ApiHandler) listStocks(c *gin.Context) {
	stocks, err := m.ForecastRepository.ListStocks(c.Request.Context())
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, stocks)
}

func (m ApiHandler) getStockInfo(c *gin.Context) {
	code := c.Param("code")
	info, err := m.ForecastRepository.GetStockInfo(c.Request.Context(), code)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, getStockInfoResponse{
		Name: info.Name,
	})
}
