package crowd

import (
	"net/http"
	"strconv"

	"darshan/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// RecordReading ingests a staff or sensor headcount
func (ctrl *Controller) RecordReading(c *gin.Context) {
	templeID := c.Param("templeId")

	var req RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, nil)
		return
	}

	reading, err := ctrl.service.RecordReading(c.Request.Context(), templeID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Crowd reading recorded successfully", reading, nil)
}

// GetCurrent returns the latest crowd reading for a temple
func (ctrl *Controller) GetCurrent(c *gin.Context) {
	templeID := c.Param("templeId")

	current, err := ctrl.service.GetCurrent(c.Request.Context(), templeID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Current crowd fetched successfully", current, nil)
}

// GetHistory returns recent readings, newest first
func (ctrl *Controller) GetHistory(c *gin.Context) {
	templeID := c.Param("templeId")
	hours, _ := strconv.Atoi(c.DefaultQuery("hours", "24"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	history, err := ctrl.service.GetHistory(c.Request.Context(), templeID, hours, limit)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Crowd history fetched successfully", history, nil)
}

// GetPredictions returns the daily crowd forecast
func (ctrl *Controller) GetPredictions(c *gin.Context) {
	templeID := c.Param("templeId")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "3"))

	predictions, err := ctrl.service.GetPredictions(c.Request.Context(), templeID, days)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Crowd predictions fetched successfully", predictions, nil)
}
