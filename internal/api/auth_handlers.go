package api

import (
	"github.com/gin-gonic/gin"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/auth"
	"github.com/powdermilkjuno/habit-tracker/internal/service"
)

// SignUp registers the account, creates its profile row with a friend code
// and opens the user's store.
func SignUp(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SignUpRequest
		if !bindJSON(c, app, &req, service.Validate) {
			return
		}
		ctx := c.Request.Context()

		sess, err := app.Auth().SignUp(ctx, req.Email, req.Password)
		if err != nil {
			HandleError(c, app.Logger(), err, "Sign up failed")
			return
		}
		profile, err := service.CreateProfile(ctx, app.Remote(), sess, req.Username)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to create profile")
			return
		}
		us, err := app.Sessions().Open(ctx, sess)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to open store")
			return
		}
		if err := us.Store.FetchProfile(ctx); err != nil {
			app.Logger().Warnf("[request_id=%s] initial profile pull: %v", c.GetString("request_id"), err)
		}
		HandleCreated(c, app.Logger(), gin.H{"session": sess, "profile": profile}, nil)
	}
}

// SignIn starts a session and pulls the remote profile and entries into
// the user's store. Pull failures leave the local copy in place.
func SignIn(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SignInRequest
		if !bindJSON(c, app, &req, service.Validate) {
			return
		}
		ctx := c.Request.Context()

		sess, err := app.Auth().SignIn(ctx, req.Email, req.Password)
		if err != nil {
			HandleError(c, app.Logger(), err, "Sign in failed")
			return
		}
		us, err := app.Sessions().Open(ctx, sess)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to open store")
			return
		}
		requestID := c.GetString("request_id")
		if err := us.Store.FetchProfile(ctx); err != nil {
			app.Logger().Warnf("[request_id=%s] profile pull after sign in: %v", requestID, err)
		}
		if err := us.Store.FetchEntries(ctx); err != nil {
			app.Logger().Warnf("[request_id=%s] entry pull after sign in: %v", requestID, err)
		}
		HandleSuccess(c, app.Logger(), gin.H{"session": sess, "state": us.Store.State()}, nil)
	}
}

func SignOut(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := auth.SessionFrom(c)
		if !ok {
			HandleError(c, app.Logger(), internal.ErrNoSession, "Unauthorized")
			return
		}
		if err := app.Auth().SignOut(c.Request.Context(), sess.AccessToken); err != nil {
			HandleError(c, app.Logger(), err, "Sign out failed")
			return
		}
		app.Sessions().Drop(sess.UserID)
		HandleSuccess(c, app.Logger(), gin.H{"signed_out": true}, nil)
	}
}
