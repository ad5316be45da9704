package weather

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the weather endpoints. Both are public reads.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller) {
	weatherGroup := rg.Group("/weather")

	weatherGroup.GET("/temples/:templeId", ctrl.GetWeather)
	weatherGroup.GET("/temples/:templeId/impact", ctrl.GetImpact)
}
