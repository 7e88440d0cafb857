package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/auth"
	"github.com/powdermilkjuno/habit-tracker/internal/response"
)

// HandleError logs err with the request id and writes the error envelope.
// The status comes from err; msg is what a non-AppError is reported as.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")
	status := internal.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	} else {
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	}

	var appErr *internal.AppError
	var resp response.APIResponse
	if errors.As(err, &appErr) {
		resp = response.FromError(err)
	} else {
		resp = response.InternalError(msg)
	}
	c.JSON(status, resp)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

func HandleCreated(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Created", requestID)
	c.JSON(http.StatusCreated, response.Success(data, meta))
}

// bindJSON decodes the body into req and runs its validation rules.
func bindJSON(c *gin.Context, app App, req interface{}, validate func(interface{}) error) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		HandleError(c, app.Logger(), internal.NewValidationError("invalid JSON body"), "Invalid JSON")
		return false
	}
	if err := validate(req); err != nil {
		HandleError(c, app.Logger(), err, "Validation failed")
		return false
	}
	return true
}

// currentUser resolves the authenticated user's session state.
func currentUser(c *gin.Context, app App) (*UserSession, bool) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		HandleError(c, app.Logger(), internal.ErrNoSession, "Unauthorized")
		return nil, false
	}
	us, err := app.Sessions().Open(c.Request.Context(), sess)
	if err != nil {
		HandleError(c, app.Logger(), err, "Failed to open store")
		return nil, false
	}
	return us, true
}
