package emergency

import (
	"darshan/internal/shared/config"
	"darshan/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the emergency endpoints. Any authenticated user
// may report; only responders handle and resolve.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	emergencyGroup := rg.Group("/emergency")
	emergencyGroup.Use(middleware.JWTAuthWithConfig(cfg))

	emergencyGroup.POST("/incidents", ctrl.ReportIncident)

	responders := emergencyGroup.Group("")
	responders.Use(middleware.RequireResponder())
	{
		responders.GET("/incidents", ctrl.ListOpen)
		responders.POST("/incidents/:incidentId/acknowledge", ctrl.Acknowledge)
		responders.POST("/incidents/:incidentId/resolve", ctrl.Resolve)
	}
}
