package response

import (
	"errors"
	"net/http"

	"darshan/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a service error to the right HTTP status. Internal
// causes stay out of the client payload; callers log them separately.
func RespondError(c *gin.Context, err error) {
	if ve, ok := apperrors.AsValidation(err); ok {
		RespondJSON(c, "error", http.StatusBadRequest, "Invalid request", nil, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, apperrors.ErrUnauthorized):
		RespondJSON(c, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
	case errors.Is(err, apperrors.ErrForbidden):
		RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
	case errors.Is(err, apperrors.ErrUpstream):
		RespondJSON(c, "error", http.StatusBadGateway, "Upstream service unavailable", nil, nil)
	default:
		RespondJSON(c, "error", http.StatusInternalServerError, "Something went wrong", nil, nil)
	}
}
