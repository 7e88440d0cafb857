package response

import (
	"errors"
	"net/http"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

type APIResponse struct {
	Data  interface{}        `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta, Error: nil}
}

func BadRequest(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(http.StatusBadRequest, msg)}
}

func Unauthorized(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(http.StatusUnauthorized, msg)}
}

func NotFound(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(http.StatusNotFound, msg)}
}

func Conflict(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(http.StatusConflict, msg)}
}

func InternalError(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(http.StatusInternalServerError, msg)}
}

// FromError keeps the kind of an *internal.AppError; anything else is a 500.
func FromError(err error) APIResponse {
	var ae *internal.AppError
	if errors.As(err, &ae) {
		return APIResponse{Error: &internal.AppError{Kind: ae.Kind, Status: internal.StatusOf(err), Message: ae.Message}}
	}
	return InternalError(http.StatusText(http.StatusInternalServerError))
}

func NewAppError(status int, msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(status, msg)}
}
