package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) trainModel(c *gin.Context) {
	code := c.Param("code")
	if err := m.ForecastRepository.TrainModel(c.Request.Context(), code); err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, map[string]string{
		"message": fmt.Sprintf("model trained for %s", code),
	})
}
