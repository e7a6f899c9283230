package response

import (
	"net/http"

	appErrors "github.com/charlesng35/dbnav/pkg/errors"
	"github.com/gin-gonic/gin"
)

// Response defines the base API payload.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo holds error details to send to clients.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta describes offset pagination of a listing.
type Meta struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit,omitempty"`
	Total  int `json:"total"`
	// Grouped reports that Offset and Total count name prefixes, not items.
	Grouped bool `json:"grouped,omitempty"`
}

// HasMore reports whether items remain past the current page.
func (m *Meta) HasMore() bool {
	if m == nil || m.Limit <= 0 {
		return false
	}
	return m.Offset+m.Limit < m.Total
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMeta writes a JSON success response including metadata.
func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Error writes a JSON error response derived from an AppError. The error is
// also attached to the gin context so the logging middleware reports it.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}
	_ = c.Error(err)

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}
