package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request id middleware sets.
const RequestIDKey = "request_id"

// APIResponse is the envelope of every /api/v1 reply. RequestID matches the
// X-Request-ID header so a client report can be traced to the server log.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func SuccessResponse(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

// ErrorResponse writes a failed envelope. The error text is only exposed for
// client errors; server-side failures stay in the log.
func ErrorResponse(c *gin.Context, code int, message string, err error) {
	response := APIResponse{
		Success:   false,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	}

	if err != nil && code < http.StatusInternalServerError {
		response.Error = err.Error()
	}

	c.JSON(code, response)
}
