// Package domainerrors defines coded domain errors for the vote auth
// service. Services translate store sentinels and upstream failures into
// these codes; the transport layer maps codes onto the wire reason field
// and an HTTP status.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a rejection reason. Values double as the wire-level
// reason strings returned to stations.
type Code string

const (
	CodeServiceClosed       Code = "service_closed"
	CodeParamsInvalid       Code = "params_invalid"
	CodeUnauthorized        Code = "unauthorized"
	CodeVersionNotSupported Code = "version_not_supported"
	CodeCardInvalid         Code = "card_invalid"
	CodeExternalError       Code = "external_error"
	CodeCardSuspicious      Code = "card_suspicious"
	CodeDuplicateEntry      Code = "duplicate_entry"
	CodeUnqualified         Code = "unqualified"
	CodeOutOfAuthCode       Code = "out_of_auth_code"
	CodeInternal            Code = "internal_error"
)

// Error carries a code plus a human-readable message and an optional
// wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or anything it wraps carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf extracts the outermost code, defaulting to CodeInternal so
// unexpected failures never leak details to stations.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code onto the HTTP status the original protocol
// uses for it. Most rejections ride on 400 so station firmware keeps a
// single error path.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeExternalError:
		return http.StatusBadGateway
	case CodeOutOfAuthCode:
		return http.StatusServiceUnavailable
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
