package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionNotFound is returned for unknown or evicted session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Error codes returned in the code field of error responses.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeCharNotFound      = "CHAR_NOT_FOUND"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeImportFailed      = "IMPORT_FAILED"
	CodeNoPendingQuestion = "NO_PENDING_QUESTION"
	CodeInternal          = "INTERNAL_ERROR"
)

// AppError is an error with an HTTP status and a machine-readable code.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// WrapError wraps err into an AppError.
func WrapError(err error, code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

func badRequest(err error) *AppError {
	return WrapError(err, CodeBadRequest, err.Error(), http.StatusBadRequest)
}

func charNotFound(char string) *AppError {
	return NewAppError(CodeCharNotFound, fmt.Sprintf("character %q is not in the dictionary", char), http.StatusNotFound)
}
