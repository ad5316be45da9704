package payments

import (
	"darshan/internal/shared/config"
	"darshan/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the payment endpoints. The webhook stays open for
// the provider; everything else requires auth.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	paymentGroup := rg.Group("/payments")

	paymentGroup.POST("/webhook", ctrl.Webhook)

	authenticated := paymentGroup.Group("")
	authenticated.Use(middleware.JWTAuthWithConfig(cfg))
	{
		authenticated.POST("/upi", ctrl.CreatePayment)
		authenticated.GET("/:reference", ctrl.GetStatus)
	}
}
