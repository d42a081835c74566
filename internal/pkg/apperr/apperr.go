// Package apperr defines the typed error taxonomy used across the pipeline
// and its mapping onto HTTP status codes at the request boundary.
package apperr

import "fmt"

// DependentResource names one row that blocks a non-cascading delete.
type DependentResource struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

type DuplicateError struct {
	Resource string
	Key      string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.Key)
}

func NewDuplicateError(resource, key string) *DuplicateError {
	return &DuplicateError{Resource: resource, Key: key}
}

type DependencyViolationError struct {
	Message   string
	Dependent []DependentResource
}

func (e *DependencyViolationError) Error() string { return e.Message }

func NewDependencyViolationError(message string, dependent []DependentResource) *DependencyViolationError {
	return &DependencyViolationError{Message: message, Dependent: dependent}
}

type RemoteFailureError struct{ Message string }

func (e *RemoteFailureError) Error() string { return e.Message }

func NewRemoteFailureError(format string, args ...interface{}) *RemoteFailureError {
	return &RemoteFailureError{Message: fmt.Sprintf(format, args...)}
}

type TranscriptionFailedError struct{ Message string }

func (e *TranscriptionFailedError) Error() string { return e.Message }

func NewTranscriptionFailedError(format string, args ...interface{}) *TranscriptionFailedError {
	return &TranscriptionFailedError{Message: fmt.Sprintf(format, args...)}
}

type EmbeddingFailedError struct{ Message string }

func (e *EmbeddingFailedError) Error() string { return e.Message }

func NewEmbeddingFailedError(format string, args ...interface{}) *EmbeddingFailedError {
	return &EmbeddingFailedError{Message: fmt.Sprintf(format, args...)}
}

type ChunkingFailedError struct{ Message string }

func (e *ChunkingFailedError) Error() string { return e.Message }

func NewChunkingFailedError(format string, args ...interface{}) *ChunkingFailedError {
	return &ChunkingFailedError{Message: fmt.Sprintf(format, args...)}
}

type LLMUnavailableError struct{ Message string }

func (e *LLMUnavailableError) Error() string { return e.Message }

func NewLLMUnavailableError(format string, args ...interface{}) *LLMUnavailableError {
	return &LLMUnavailableError{Message: fmt.Sprintf(format, args...)}
}

type TimeoutError struct{ Message string }

func (e *TimeoutError) Error() string { return e.Message }

func NewTimeoutError(format string, args ...interface{}) *TimeoutError {
	return &TimeoutError{Message: fmt.Sprintf(format, args...)}
}

// ToHTTPStatus maps a taxonomy error to an HTTP status and a machine-
// readable code. Errors with no mapping here are treated as internal
// failures (500).
func ToHTTPStatus(err error) (int, string) {
	switch e := err.(type) {
	case *ValidationError:
		_ = e
		return 400, "VALIDATION_ERROR"
	case *NotFoundError:
		return 404, "NOT_FOUND"
	case *DuplicateError:
		return 409, "DUPLICATE"
	case *DependencyViolationError:
		return 409, "DEPENDENCY_VIOLATION"
	case *RemoteFailureError:
		return 502, "REMOTE_FAILURE"
	case *TranscriptionFailedError:
		return 502, "TRANSCRIPTION_FAILED"
	case *EmbeddingFailedError:
		return 502, "EMBEDDING_FAILED"
	case *ChunkingFailedError:
		return 502, "CHUNKING_FAILED"
	case *LLMUnavailableError:
		return 503, "LLM_UNAVAILABLE"
	case *TimeoutError:
		return 504, "TIMEOUT"
	default:
		return 500, "INTERNAL_ERROR"
	}
}
