package parking

import (
	"darshan/internal/shared/config"
	"darshan/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the parking endpoints
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	parkingGroup := rg.Group("/parking")

	parkingGroup.GET("/temples/:templeId/zones", ctrl.ListZones)

	staff := parkingGroup.Group("")
	staff.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStaff())
	{
		staff.POST("/zones", ctrl.CreateZone)
		staff.POST("/zones/:zoneId/arrivals", ctrl.RecordArrival)
		staff.POST("/zones/:zoneId/departures", ctrl.RecordDeparture)
	}
}
