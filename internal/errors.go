package internal

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindNotFound   ErrorKind = "not_found"
	KindSync       ErrorKind = "sync"
	KindConflict   ErrorKind = "conflict"
	KindInternal   ErrorKind = "internal"
)

// AppError is the error shape shared by services and the HTTP envelope.
type AppError struct {
	Kind    ErrorKind `json:"kind,omitempty"`
	Status  int       `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches another *AppError by kind and message, so sentinels compare by value.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func NewAppError(status int, msg string) *AppError {
	return &AppError{Kind: kindForStatus(status), Status: status, Message: msg}
}

func NewValidationError(msg string) *AppError {
	return &AppError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

func NewAuthError(msg string, err error) *AppError {
	return &AppError{Kind: KindAuth, Status: http.StatusUnauthorized, Message: msg, Err: err}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func NewConflictError(msg string) *AppError {
	return &AppError{Kind: KindConflict, Status: http.StatusConflict, Message: msg}
}

// NewSyncError wraps a failed remote operation named by op.
func NewSyncError(err error, op string) *AppError {
	return &AppError{Kind: KindSync, Status: http.StatusBadGateway, Message: op + " failed", Err: err}
}

var ErrNoSession = NewAuthError("no active session", nil)

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	}
	return KindInternal
}
