package emergency

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

// ReportIncident files a new emergency report
func (ctrl *Controller) ReportIncident(c *gin.Context) {
	var req ReportIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, nil)
		return
	}

	incident, err := ctrl.service.ReportIncident(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Incident reported successfully", incident, nil)
}

// ListOpen returns unresolved incidents, optionally filtered by temple
func (ctrl *Controller) ListOpen(c *gin.Context) {
	incidents, err := ctrl.service.ListOpen(c.Request.Context(), c.Query("temple_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Incidents fetched successfully", incidents, nil)
}

// Acknowledge marks an incident as being handled
func (ctrl *Controller) Acknowledge(c *gin.Context) {
	incident, err := ctrl.service.AcknowledgeIncident(c.Request.Context(),
		c.Param("incidentId"), c.GetString("user_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Incident acknowledged successfully", incident, nil)
}

// Resolve closes an incident
func (ctrl *Controller) Resolve(c *gin.Context) {
	incident, err := ctrl.service.ResolveIncident(c.Request.Context(),
		c.Param("incidentId"), c.GetString("user_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Incident resolved successfully", incident, nil)
}
