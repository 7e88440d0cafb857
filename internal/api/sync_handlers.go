package api

import (
	"github.com/gin-gonic/gin"
)

// PostSync is the manual "sync to cloud" action: a synchronous full push.
func PostSync(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		if err := us.Store.SyncNow(c.Request.Context()); err != nil {
			HandleError(c, app.Logger(), err, "Sync failed")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"status": us.Store.SyncStatus()}, nil)
	}
}

func PostFetch(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		if err := us.Store.FetchEntries(c.Request.Context()); err != nil {
			HandleError(c, app.Logger(), err, "Fetch failed")
			return
		}
		HandleSuccess(c, app.Logger(), us.Store.State(), nil)
	}
}

func GetSyncStatus(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"status": us.Store.SyncStatus()}, nil)
	}
}
