package weather

import (
	"net/http"

	"darshan/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetWeather returns current conditions at a temple
func (ctrl *Controller) GetWeather(c *gin.Context) {
	templeID := c.Param("templeId")

	data, err := ctrl.service.GetWeather(c.Request.Context(), templeID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Weather fetched successfully", data, nil)
}

// GetImpact returns the weather-derived crowd impact estimate
func (ctrl *Controller) GetImpact(c *gin.Context) {
	templeID := c.Param("templeId")

	impact, err := ctrl.service.GetImpact(c.Request.Context(), templeID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Weather impact fetched successfully", impact, nil)
}
