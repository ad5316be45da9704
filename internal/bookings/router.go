package bookings

import (
	"darshan/internal/shared/config"
	"darshan/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the booking endpoints
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	bookingGroup := rg.Group("/bookings")
	bookingGroup.Use(middleware.JWTAuthWithConfig(cfg))
	{
		bookingGroup.POST("", ctrl.CreateBooking)
		bookingGroup.GET("", ctrl.ListMyBookings)
		bookingGroup.GET("/:bookingId", ctrl.GetBooking)
		bookingGroup.DELETE("/:bookingId", ctrl.CancelBooking)
	}

	staff := rg.Group("/bookings")
	staff.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStaff())
	{
		staff.POST("/:bookingId/complete", ctrl.CompleteBooking)
	}
}
