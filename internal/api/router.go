package api

import (
	"github.com/gin-gonic/gin"

	"github.com/powdermilkjuno/habit-tracker/internal/auth"
)

func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(methodNotAllowed)
	r.Use(gin.Recovery(), RequestIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.GET("/auth/:key", LookupUser(app))
	api.POST("/signup", SignUp(app))
	api.POST("/signin", SignIn(app))

	authed := api.Group("", auth.Middleware(app.Auth(), app.Logger()))
	authed.POST("/signout", SignOut(app))
	authed.GET("/state", GetState(app))

	authed.POST("/entries/food", PostFood(app))
	authed.POST("/entries/exercise", PostExercise(app))
	authed.PATCH("/entries/:id/visibility", ToggleVisibility(app))
	authed.DELETE("/entries", ClearHistory(app))
	authed.DELETE("/entries/:id", DeleteEntry(app))

	authed.POST("/sync", PostSync(app))
	authed.POST("/fetch", PostFetch(app))
	authed.GET("/sync/status", GetSyncStatus(app))

	authed.PUT("/profile", PutProfile(app))
	authed.POST("/profile/reset", PostProfileReset(app))

	authed.GET("/friends", GetFriends(app))
	authed.POST("/friends", PostFriend(app))
	authed.GET("/friends/code", GetFriendCode(app))
	authed.DELETE("/friends/:id", DeleteFriend(app))
	return r
}
