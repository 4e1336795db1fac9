// Package httpkit holds the gin helpers shared by every HTTP module:
// response envelopes, error mapping, and the common middleware.
package httpkit

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadflow_backend/platform/apperr"
)

// ErrorResponse is the envelope every error reply uses.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// OK writes the payload with status 200.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Error writes an ErrorResponse with an explicit status.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// HandleError translates a service error into an HTTP reply. Typed
// *apperr.Error values map through their Kind; anything else is treated as a
// bad request so internals never leak. Reports whether a reply was written.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), ErrorResponse{
			Error:   appErr.Message,
			Details: appErr.Details,
		})
		return true
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	return true
}
