package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeDatabaseError        = "DATABASE_ERROR"
	CodeUnsupportedFormat    = "UNSUPPORTED_FORMAT"
	CodeParseError           = "PARSE_ERROR"
	CodeInvalidPage          = "INVALID_PAGE"
	CodeProcessingInProgress = "PROCESSING_IN_PROGRESS"
	CodeNotFound             = "NOT_FOUND"
	CodeInsightError         = "INSIGHT_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func UnsupportedFormat(message string) *AppError {
	return New(CodeUnsupportedFormat, message)
}

func ParseError(message string) *AppError {
	return New(CodeParseError, message)
}

func InvalidPage(message string) *AppError {
	return New(CodeInvalidPage, message)
}

func ProcessingInProgress(message string) *AppError {
	return New(CodeProcessingInProgress, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Predicates for the upload/query error taxonomy

func IsUnsupportedFormat(err error) bool { return HasCode(err, CodeUnsupportedFormat) }
func IsParseError(err error) bool        { return HasCode(err, CodeParseError) }
func IsInvalidPage(err error) bool       { return HasCode(err, CodeInvalidPage) }
func IsProcessingInProgress(err error) bool {
	return HasCode(err, CodeProcessingInProgress)
}
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }
