package payments

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

// CreatePayment starts a UPI collection for a pending booking
func (ctrl *Controller) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, nil)
		return
	}

	txn, err := ctrl.service.CreatePayment(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Payment intent created successfully", txn, nil)
}

// GetStatus returns the state of one payment by reference
func (ctrl *Controller) GetStatus(c *gin.Context) {
	role := c.GetString("user_role")
	isStaff := role == middleware.RoleStaff || role == middleware.RoleAdmin

	txn, err := ctrl.service.GetStatus(c.Request.Context(), c.Param("reference"), c.GetString("user_id"), isStaff)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment status fetched successfully", txn, nil)
}

// Webhook receives the provider's settlement callback
func (ctrl *Controller) Webhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, nil)
		return
	}

	txn, err := ctrl.service.HandleWebhook(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Webhook processed successfully", txn, nil)
}
