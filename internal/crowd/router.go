package crowd

import (
	"darshan/internal/shared/config"
	"darshan/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the crowd endpoints
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	crowdGroup := rg.Group("/crowd")

	crowdGroup.GET("/temples/:templeId/current", ctrl.GetCurrent)
	crowdGroup.GET("/temples/:templeId/history", ctrl.GetHistory)
	crowdGroup.GET("/temples/:templeId/predictions", ctrl.GetPredictions)

	staff := crowdGroup.Group("")
	staff.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStaff())
	{
		staff.POST("/temples/:templeId/readings", ctrl.RecordReading)
	}
}
