package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates another attempt could succeed.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Stage returns the transport stage recorded on the error, if any.
func (e *AppError) Stage() string {
	s, _ := e.Details["stage"].(string)
	return s
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// InvalidInput creates an error for text that cannot be turned into a domain value.
// The reason is used verbatim as the message.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates an error for a request that breaks a domain rule.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Transport creates an error for a failure at the given transport stage.
func Transport(stage string, cause error) *AppError {
	msg := "HTTP request execution failed"
	switch stage {
	case StageBuild:
		msg = "Could not build the HTTP request"
	case StageResolve:
		msg = "Could not resolve host"
	case StageConnect:
		msg = "Could not connect to host"
	case StageTLS:
		msg = "TLS handshake failed"
	case StageHandshake:
		msg = "HTTP handshake failed"
	case StageReceive:
		msg = "Failed to read response body"
	}
	return New(ErrCodeTransport, msg).WithDetail("stage", stage).WithCause(cause)
}

// InvalidResponse creates an error for a reply whose body cannot be represented.
func InvalidResponse(reason string, cause error) *AppError {
	return New(ErrCodeInvalidResponse, reason).WithCause(cause)
}

// Internal creates an error for an unexpected condition.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred").WithCause(cause)
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// IsInvalidInput reports whether err is an INVALID_INPUT error.
func IsInvalidInput(err error) bool { return CodeOf(err) == ErrCodeInvalidInput }

// IsValidation reports whether err is a VALIDATION_FAILED error.
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

// IsTransport reports whether err is a TRANSPORT_FAILED error.
func IsTransport(err error) bool { return CodeOf(err) == ErrCodeTransport }

// IsResponse reports whether err is a RESPONSE_INVALID error.
func IsResponse(err error) bool { return CodeOf(err) == ErrCodeInvalidResponse }

// Is is a thin re-export of the standard errors.Is for callers importing this package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As is a thin re-export of the standard errors.As.
func As(err error, target any) bool { return stderrors.As(err, target) }
