package api

import (
	"github.com/gin-gonic/gin"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/service"
)

func GetState(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		HandleSuccess(c, app.Logger(), us.Store.State(), nil)
	}
}

func PostFood(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.FoodRequest
		if !bindJSON(c, app, &req, service.Validate) {
			return
		}
		addEntry(c, app, service.FoodEntry(&req, app.Now()))
	}
}

func PostExercise(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ExerciseRequest
		if !bindJSON(c, app, &req, service.Validate) {
			return
		}
		addEntry(c, app, service.ExerciseEntry(&req, app.Now()))
	}
}

func addEntry(c *gin.Context, app App, e internal.Entry) {
	us, ok := currentUser(c, app)
	if !ok {
		return
	}
	stored, err := us.Store.AddEntry(c.Request.Context(), e)
	if err != nil {
		HandleError(c, app.Logger(), err, "Failed to save entry")
		return
	}
	st := us.Store.State()
	HandleCreated(c, app.Logger(), stored, map[string]any{
		"total_calories": st.TotalCalories,
		"pet_status":     st.PetStatus,
	})
}

// ToggleVisibility flips an entry; an unknown id answers 200 with found=false.
func ToggleVisibility(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		found, err := us.Store.ToggleEntryVisibility(c.Request.Context(), c.Param("id"))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to toggle entry")
			return
		}
		HandleSuccess(c, app.Logger(), us.Store.State(), map[string]any{"found": found})
	}
}

// ClearHistory is local only; the remote rows stay until the next push.
func ClearHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		if err := us.Store.ClearHistory(c.Request.Context()); err != nil {
			HandleError(c, app.Logger(), err, "Failed to clear history")
			return
		}
		HandleSuccess(c, app.Logger(), us.Store.State(), nil)
	}
}

func DeleteEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		if err := us.Store.DeleteEntryFromRemote(c.Request.Context(), c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete entry")
			return
		}
		HandleSuccess(c, app.Logger(), us.Store.State(), nil)
	}
}
