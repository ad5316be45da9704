package traffic

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

// CreateAdvisory publishes a new traffic advisory
func (ctrl *Controller) CreateAdvisory(c *gin.Context) {
	var req CreateAdvisoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, nil)
		return
	}

	advisory, err := ctrl.service.CreateAdvisory(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Traffic advisory created successfully", advisory, nil)
}

// ListActive returns advisories still in force for a temple
func (ctrl *Controller) ListActive(c *gin.Context) {
	advisories, err := ctrl.service.ListActive(c.Request.Context(), c.Param("templeId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Traffic advisories fetched successfully", advisories, nil)
}

// Expire ends an advisory immediately
func (ctrl *Controller) Expire(c *gin.Context) {
	if err := ctrl.service.ExpireAdvisory(c.Request.Context(), c.Param("advisoryId")); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Traffic advisory expired successfully", nil, nil)
}
