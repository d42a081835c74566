package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ytlearn/backend/internal/pkg/apperr"
)

func TestRespondAppError_MapsStatusAndCode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperr.NewValidationError("bad input"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", apperr.NewNotFoundError("video", "abc"), http.StatusNotFound, "NOT_FOUND"},
		{"dependency violation", apperr.NewDependencyViolationError("has dependents", []apperr.DependentResource{{Type: "audio_chunk", ID: 1}}), http.StatusConflict, "DEPENDENCY_VIOLATION"},
		{"llm unavailable", apperr.NewLLMUnavailableError("down"), http.StatusServiceUnavailable, "LLM_UNAVAILABLE"},
		{"timeout", apperr.NewTimeoutError("slow"), http.StatusGatewayTimeout, "TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			RespondAppError(c, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got=%d want=%d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Fatalf("expected code %q in body: %s", tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestRespondAppError_DependencyViolationIncludesDependents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	err := apperr.NewDependencyViolationError("video has dependents", []apperr.DependentResource{
		{Type: "audio_chunk", ID: 7},
		{Type: "transcription", ID: 9},
	})
	RespondAppError(c, err)

	body := rec.Body.String()
	if !strings.Contains(body, `"type":"audio_chunk"`) || !strings.Contains(body, `"type":"transcription"`) {
		t.Fatalf("expected dependent resources listed in body: %s", body)
	}
}
