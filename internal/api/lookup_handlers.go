package api

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/powdermilkjuno/habit-tracker/internal/ratelimit"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
)

var shareCodePattern = regexp.MustCompile(`^\d{12}$`)

// LookupUser serves GET /api/auth/:key. An all-digit key is a share code and
// goes through the rate limiter; anything else is a user id.
func LookupUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		if isDigits(key) {
			lookupByShareCode(c, app, key)
			return
		}
		lookupByID(c, app, key)
	}
}

func lookupByShareCode(c *gin.Context, app App, code string) {
	if !app.Limiter().Allow(ratelimit.ClientKey(c)) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": ratelimit.Message})
		return
	}
	if !shareCodePattern.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code format"})
		return
	}
	p, err := app.Remote().ProfileByFriendCode(c.Request.Context(), code)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			app.Logger().Errorf("[request_id=%s] share code lookup: %v", c.GetString("request_id"), err)
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, p.Public())
}

func lookupByID(c *gin.Context, app App, id string) {
	p, err := app.Remote().GetProfile(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		app.Logger().Errorf("[request_id=%s] user lookup %s: %v", c.GetString("request_id"), id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func isDigits(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}
