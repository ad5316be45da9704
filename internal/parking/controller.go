package parking

import (
	"net/http"

	"darshan/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateZone registers a new parking zone
func (ctrl *Controller) CreateZone(c *gin.Context) {
	var req CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, nil)
		return
	}

	zone, err := ctrl.service.CreateZone(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Parking zone created successfully", zone, nil)
}

// ListZones returns all zones for a temple with live availability
func (ctrl *Controller) ListZones(c *gin.Context) {
	zones, err := ctrl.service.ListZones(c.Request.Context(), c.Param("templeId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Parking zones fetched successfully", zones, nil)
}

// RecordArrival marks one vehicle entering the zone
func (ctrl *Controller) RecordArrival(c *gin.Context) {
	zone, err := ctrl.service.RecordArrival(c.Request.Context(), c.Param("zoneId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Arrival recorded successfully", zone, nil)
}

// RecordDeparture marks one vehicle leaving the zone
func (ctrl *Controller) RecordDeparture(c *gin.Context) {
	zone, err := ctrl.service.RecordDeparture(c.Request.Context(), c.Param("zoneId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Departure recorded successfully", zone, nil)
}
