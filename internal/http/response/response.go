package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ytlearn/backend/internal/pkg/apperr"
)

type APIError struct {
	Message            string                     `json:"message"`
	Code               string                     `json:"code,omitempty"`
	DependentResources []apperr.DependentResource `json:"dependent_resources,omitempty"`
}

type ErrorEnvelope struct {
	Error     APIError `json:"error"`
	TraceID   string   `json:"trace_id,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	traceID := c.GetString("trace_id")
	requestID := c.GetString("request_id")
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
		TraceID:   traceID,
		RequestID: requestID,
	})
}

// RespondAppError maps a typed apperr error onto its HTTP status and body,
// including the dependent-resource listing for a non-cascading delete
// refusal.
func RespondAppError(c *gin.Context, err error) {
	status, code := apperr.ToHTTPStatus(err)
	apiErr := APIError{Message: err.Error(), Code: code}
	if dve, ok := err.(*apperr.DependencyViolationError); ok {
		apiErr.DependentResources = dve.Dependent
	}
	c.JSON(status, ErrorEnvelope{
		Error:     apiErr,
		TraceID:   c.GetString("trace_id"),
		RequestID: c.GetString("request_id"),
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
