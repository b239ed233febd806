package errors

import (
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined errors
var (
	ErrNotFound = &AppError{
		Code:    "NOT_FOUND",
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}

	ErrUnauthorized = &AppError{
		Code:    "UNAUTHORIZED",
		Message: "User identity is required",
		Status:  http.StatusUnauthorized,
	}

	ErrBadRequest = &AppError{
		Code:    "BAD_REQUEST",
		Message: "Invalid request",
		Status:  http.StatusBadRequest,
	}

	ErrInvalidBackend = &AppError{
		Code:    "INVALID_BACKEND",
		Message: "Unknown parsing backend",
		Status:  http.StatusBadRequest,
	}

	ErrMissingServerURL = &AppError{
		Code:    "MISSING_SERVER_URL",
		Message: "Client backend requires a server URL",
		Status:  http.StatusBadRequest,
	}

	ErrUnsupportedFileType = &AppError{
		Code:    "UNSUPPORTED_FILE_TYPE",
		Message: "Unsupported file type",
		Status:  http.StatusBadRequest,
	}

	ErrParseFailed = &AppError{
		Code:    "PARSE_FAILED",
		Message: "File parsing failed",
		Status:  http.StatusInternalServerError,
	}

	ErrQueuePublish = &AppError{
		Code:    "QUEUE_PUBLISH_FAILED",
		Message: "Failed to queue parsing task",
		Status:  http.StatusInternalServerError,
	}

	ErrInternalServer = &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
)

func NewError(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

func WrapError(err error, code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ErrorResponse is a common error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
