package queue

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

// GetStatus returns the caller's place in the queue for a booking
func (ctrl *Controller) GetStatus(c *gin.Context) {
	bookingID := c.Param("bookingId")
	requesterID := c.GetString("user_id")

	status, err := ctrl.service.GetQueueStatus(c.Request.Context(), bookingID, requesterID, isStaff(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Queue status fetched successfully", status, nil)
}

// GetTempleOverview returns the queue summary for one temple
func (ctrl *Controller) GetTempleOverview(c *gin.Context) {
	templeID := c.Param("templeId")

	overview, err := ctrl.service.GetTempleOverview(c.Request.Context(), templeID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Queue overview fetched successfully", overview, nil)
}

// CheckIn completes the head of the temple queue and advances the rest
func (ctrl *Controller) CheckIn(c *gin.Context) {
	templeID := c.Param("templeId")

	completed, err := ctrl.service.CheckIn(c.Request.Context(), templeID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Pilgrim checked in successfully", completed, nil)
}

// Cancel releases a booking's place in the queue
func (ctrl *Controller) Cancel(c *gin.Context) {
	bookingID := c.Param("bookingId")
	requesterID := c.GetString("user_id")

	if err := ctrl.service.CancelEntry(c.Request.Context(), bookingID, requesterID, isStaff(c)); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Queue entry cancelled successfully", nil, nil)
}

// Patch applies a staff reconciliation patch to a queue entry
func (ctrl *Controller) Patch(c *gin.Context) {
	bookingID := c.Param("bookingId")

	var req PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, nil)
		return
	}

	entry, applied, err := ctrl.service.ApplyPatch(c.Request.Context(), bookingID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	message := "Queue entry updated successfully"
	if !applied {
		message = "Patch discarded, a newer version exists"
	}
	response.RespondJSON(c, "success", http.StatusOK, message, entry, map[string]interface{}{
		"applied": applied,
	})
}

func isStaff(c *gin.Context) bool {
	role := c.GetString("user_role")
	return role == middleware.RoleStaff || role == middleware.RoleAdmin
}
