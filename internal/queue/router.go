package queue

import (
	"darshan/internal/shared/config"
	"darshan/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the queue endpoints
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	queueGroup := rg.Group("/queue")

	// Public temple overview for display boards
	queueGroup.GET("/temples/:templeId", ctrl.GetTempleOverview)

	authenticated := queueGroup.Group("")
	authenticated.Use(middleware.JWTAuthWithConfig(cfg))
	{
		authenticated.GET("/status/:bookingId", ctrl.GetStatus)
		authenticated.DELETE("/entries/:bookingId", ctrl.Cancel)
	}

	staff := queueGroup.Group("")
	staff.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStaff())
	{
		staff.POST("/temples/:templeId/checkin", ctrl.CheckIn)
		staff.PATCH("/entries/:bookingId", ctrl.Patch)
	}
}
