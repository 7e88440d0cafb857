package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

const sessionKey = "session"

// Middleware rejects requests without a valid bearer token and stores the
// session in the gin context.
func Middleware(provider Provider, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token != "" {
			sess, err := provider.Validate(c.Request.Context(), token)
			if err == nil {
				c.Set(sessionKey, sess)
				c.Next()
				return
			}
			logger.Debugf("[request_id=%s] rejected token: %v", c.GetString("request_id"), err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func SessionFrom(c *gin.Context) (*internal.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*internal.Session)
	return sess, ok
}
