package apperror

import (
	"errors"
	"net/http"
)

type Code string

const (
	BadRequest   Code = "BAD_REQUEST"
	Unauthorized Code = "UNAUTHORIZED"
	NotFound     Code = "NOT_FOUND"
	Conflict     Code = "CONFLICT"
	Upstream     Code = "UPSTREAM"
	Transport    Code = "TRANSPORT"
	Decode       Code = "DECODE"
	Busy         Code = "BUSY"
	Internal     Code = "INTERNAL"
)

type AppError struct {
	code    Code
	message string
	// detail is the backend-supplied message; empty when it sent none.
	detail string
	status int
	err    error
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

// Wrap keeps err reachable through errors.Is/As.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{code: code, message: message, err: err}
}

// FromStatus classifies a non-2xx backend response. detail is the
// backend-supplied message, if any.
func FromStatus(status int, detail string) *AppError {
	code := Upstream
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = BadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		code = Unauthorized
	case http.StatusNotFound:
		code = NotFound
	case http.StatusConflict:
		code = Conflict
	}
	message := detail
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{code: code, message: message, detail: detail, status: status}
}

func (e *AppError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *AppError) Unwrap() error   { return e.err }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }

// Status is the backend HTTP status, or 0 when the error never reached
// the backend.
func (e *AppError) Status() int { return e.status }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict, Busy:
		return http.StatusConflict
	case Upstream, Transport, Decode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the code of the first AppError in err's chain, or
// Internal.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.code
	}
	return Internal
}

// DetailOf returns the backend-supplied message carried by err, if any.
func DetailOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.detail
	}
	return ""
}
