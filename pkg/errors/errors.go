package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the stable machine-readable error identifier sent to clients.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata is how a code is rendered over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func rejected(status int, public string) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public}
}

func failed(status int, public string) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, Retryable: true}
}

func (m Metadata) withDetails() Metadata {
	m.DetailsAllowed = true
	return m
}

var rendering = map[Code]Metadata{
	CodeValidation:    rejected(http.StatusBadRequest, "validation failed").withDetails(),
	CodeUnauthorized:  rejected(http.StatusUnauthorized, "authentication required"),
	CodeForbidden:     rejected(http.StatusForbidden, "access denied"),
	CodeNotFound:      rejected(http.StatusNotFound, "resource not found"),
	CodeConflict:      rejected(http.StatusConflict, "conflict detected"),
	CodeStateConflict: rejected(http.StatusUnprocessableEntity, "state transition disallowed").withDetails(),
	CodeIdempotency:   rejected(http.StatusConflict, "idempotency key reused").withDetails(),
	CodeRateLimit:     rejected(http.StatusTooManyRequests, "rate limit exceeded"),
	CodeInternal:      failed(http.StatusInternalServerError, "internal server error"),
	CodeDependency:    failed(http.StatusServiceUnavailable, "dependency unavailable").withDetails(),
}

// MetadataFor renders unknown codes as internal errors.
func MetadataFor(code Code) Metadata {
	meta, ok := rendering[code]
	if !ok {
		return rendering[CodeInternal]
	}
	return meta
}

// Error is a coded failure. The message may reach clients for 4xx codes; the
// cause never does.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validation builds a validation error carrying per-field details.
func Validation(message string, fields ...FieldError) *Error {
	err := New(CodeValidation, message)
	if len(fields) > 0 {
		err.details = fields
	}
	return err
}

// Code reports CodeInternal for a nil error.
func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches client-visible context and returns e for chaining.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", e.code, e.message)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether the outermost *Error in err's chain carries code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
