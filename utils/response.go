package utils

import (
	"errors"
	"net/http"

	"github.com/mazza92/creator-dashboard-backend-sub000/apperrors"

	"github.com/gin-gonic/gin"
)

// Response is the standard API envelope
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
}

// SendSuccess sends a success response
func SendSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendError sends an error response
func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error:   message,
	})
}

// SendAppError maps the error taxonomy to its HTTP status and structured
// {error_kind, message} body. Unknown errors become a generic 500.
func SendAppError(c *gin.Context, err error) {
	var (
		validationErr      *apperrors.ValidationError
		authorizationErr   *apperrors.AuthorizationError
		notFoundErr        *apperrors.NotFoundError
		invalidStateErr    *apperrors.InvalidStateError
		conflictErr        *apperrors.ConflictError
		alreadyResolvedErr *apperrors.AlreadyResolvedError
		amountMismatchErr  *apperrors.AmountMismatchError
		quotaExceededErr   *apperrors.QuotaExceededError
		gatewayErr         *apperrors.GatewayError
	)

	status := http.StatusInternalServerError
	kind := "internal_error"

	switch {
	case errors.As(err, &validationErr):
		status, kind = http.StatusBadRequest, "validation_error"
	case errors.As(err, &authorizationErr):
		status, kind = http.StatusForbidden, "authorization_error"
	case errors.As(err, &notFoundErr):
		status, kind = http.StatusNotFound, "not_found"
	case errors.As(err, &invalidStateErr):
		status, kind = http.StatusBadRequest, "invalid_state"
	case errors.As(err, &conflictErr):
		status, kind = http.StatusConflict, "conflict"
	case errors.As(err, &alreadyResolvedErr):
		status, kind = http.StatusConflict, "already_resolved"
	case errors.As(err, &amountMismatchErr):
		status, kind = http.StatusBadRequest, "amount_mismatch"
	case errors.As(err, &quotaExceededErr):
		status, kind = http.StatusBadRequest, "quota_exceeded"
	case errors.As(err, &gatewayErr):
		kind = "gateway_error"
		if gatewayErr.Unreachable {
			status = http.StatusBadGateway
		} else {
			status = http.StatusBadRequest
		}
	}

	c.JSON(status, Response{
		Success:   false,
		Error:     err.Error(),
		ErrorKind: kind,
	})
}

// ValidateRequestBody binds the JSON body, answering 400 on failure
func ValidateRequestBody(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		SendError(c, 400, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
