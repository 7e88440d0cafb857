package api

import (
	"github.com/gin-gonic/gin"

	"github.com/powdermilkjuno/habit-tracker/internal/service"
)

func GetFriends(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		list, err := us.Friends.FetchFriends(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch friends")
			return
		}
		HandleSuccess(c, app.Logger(), list, map[string]any{"count": len(list)})
	}
}

func PostFriend(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.FriendRequest
		if !bindJSON(c, app, &req, service.Validate) {
			return
		}
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		friend, err := us.Friends.AddFriend(c.Request.Context(), req.Code)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to add friend")
			return
		}
		HandleCreated(c, app.Logger(), friend, nil)
	}
}

func DeleteFriend(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		if err := us.Friends.RemoveFriend(c.Request.Context(), c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, "Failed to remove friend")
			return
		}
		HandleSuccess(c, app.Logger(), us.Friends.Friends(), nil)
	}
}

func GetFriendCode(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, ok := currentUser(c, app)
		if !ok {
			return
		}
		code, err := us.Friends.GetUserFriendCode(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to get friend code")
			return
		}
		HandleSuccess(c, app.Logger(), map[string]string{"friend_code": code}, nil)
	}
}
