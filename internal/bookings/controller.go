package bookings

import (
	"net/http"

	"darshan/internal/shared/middleware"
	"darshan/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking reserves a darshan slot for the caller
func (ctrl *Controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, nil)
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking created successfully", booking, nil)
}

// GetBooking returns one booking
func (ctrl *Controller) GetBooking(c *gin.Context) {
	booking, err := ctrl.service.GetBooking(c.Request.Context(),
		c.Param("bookingId"), c.GetString("user_id"), isStaff(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking fetched successfully", booking, nil)
}

// ListMyBookings returns the caller's bookings, newest first
func (ctrl *Controller) ListMyBookings(c *gin.Context) {
	bookings, err := ctrl.service.ListUserBookings(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings fetched successfully", bookings, nil)
}

// CancelBooking cancels a booking and releases its queue entry
func (ctrl *Controller) CancelBooking(c *gin.Context) {
	booking, err := ctrl.service.CancelBooking(c.Request.Context(),
		c.Param("bookingId"), c.GetString("user_id"), isStaff(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking cancelled successfully", booking, nil)
}

// CompleteBooking marks a booking completed after darshan
func (ctrl *Controller) CompleteBooking(c *gin.Context) {
	booking, err := ctrl.service.CompleteBooking(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking completed successfully", booking, nil)
}

func isStaff(c *gin.Context) bool {
	role := c.GetString("user_role")
	return role == middleware.RoleStaff || role == middleware.RoleAdmin
}
