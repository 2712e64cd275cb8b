package api

import (
	"github.com/gin-gonic/gin"
)

// predict fetches a prediction and returns it assembled into a chart. The
// label query param overrides the series label, which defaults to the code.
func (m ApiHandler) predict(c *gin.Context) {
	code := c.Param("code")
	label := c.DefaultQuery("label", code)

	prediction, err := m.ForecastRepository.Predict(c.Request.Context(), code)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	chart, err := m.ChartService.BuildFromPrediction(*prediction, label)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, chart)
}
