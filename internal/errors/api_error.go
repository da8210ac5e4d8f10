package errors

import "net/http"

const (
	CodeValidation         = "validation_error"
	CodeGeneration         = "generation_error"
	CodeServiceUnavailable = "service_unavailable"
	CodeInvalidJSON        = "invalid_json"
	CodeTaskNotFound       = "task_not_found"
	CodeInternal           = "internal_error"
)

type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// HasCode reports whether e carries the given taxonomy code.
func (e *APIError) HasCode(code string) bool {
	return e != nil && e.Code == code
}

func New(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, CodeInternal, message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

// Validation reports malformed caller input.
func Validation(message string, details interface{}) *APIError {
	err := New(http.StatusBadRequest, CodeValidation, message)
	err.Details = details
	return err
}

// Generation reports a model call that succeeded on the wire but produced an
// empty or invalid result.
func Generation(message string, details interface{}) *APIError {
	err := New(http.StatusBadGateway, CodeGeneration, message)
	err.Details = details
	return err
}

// ServiceUnavailable reports a failed call to the model backend.
func ServiceUnavailable(message string) *APIError {
	return New(http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}
