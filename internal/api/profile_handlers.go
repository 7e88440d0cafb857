package api

import (
	"github.com/gin-gonic/gin"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/service"
	"github.com/powdermilkjuno/habit-tracker/internal/store"
)

// PutProfile applies the quiz answers locally, then mirrors the profile.
// A failed mirror is reported in meta, not as an error.
func PutProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ProfileRequest
		if !bindJSON(c, app, &req, service.Validate) {
			return
		}
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		p, err := us.Store.SetUserData(c.Request.Context(), req.Update())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to save profile")
			return
		}
		HandleSuccess(c, app.Logger(), p, mirrorProfile(c, app, us.Store))
	}
}

func PostProfileReset(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		p, err := us.Store.ResetProfile(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to reset profile")
			return
		}
		HandleSuccess(c, app.Logger(), p, mirrorProfile(c, app, us.Store))
	}
}

func mirrorProfile(c *gin.Context, app App, st *store.Store) map[string]any {
	if err := st.UpdateUserProfile(c.Request.Context()); err != nil {
		app.Logger().Warnf("[request_id=%s] profile mirror: %v", c.GetString("request_id"), err)
		return map[string]any{"synced": false, "sync_error": internal.StatusOf(err)}
	}
	return map[string]any{"synced": true}
}
