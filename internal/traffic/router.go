package traffic

import (
	"darshan/internal/shared/config"
	"darshan/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the traffic advisory endpoints
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	trafficGroup := rg.Group("/traffic")

	trafficGroup.GET("/temples/:templeId/advisories", ctrl.ListActive)

	staff := trafficGroup.Group("")
	staff.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStaff())
	{
		staff.POST("/advisories", ctrl.CreateAdvisory)
		staff.DELETE("/advisories/:advisoryId", ctrl.Expire)
	}
}
