package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-booking/models"
	"hotel-booking/services"
	"hotel-booking/utils"
)

const (
	ContextKeyUser         = "user"
	ContextKeyUserID       = "user_id"
	ContextKeySessionToken = "session_token"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// SessionToken reads the token from the session cookie, falling back to an
// "Authorization: Bearer" header.
func SessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// RequireSession rejects requests without a live session with 401.
func RequireSession(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "error.unauthorized", "Unauthorized")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if services.IsAuthError(err) {
				utils.AbortWithError(c, http.StatusUnauthorized, "error.unauthorized", "Unauthorized")
				return
			}
			_ = c.Error(err)
			utils.AbortWithError(c, http.StatusInternalServerError, "error.internal", "Could not verify session")
			return
		}

		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeySessionToken, token)
		c.Next()
	}
}

// RequireSameUser lets a request through only when the path parameter names
// the logged-in user.
func RequireSameUser(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, "error.unauthorized", "Unauthorized")
			return
		}
		if c.Param(param) != userID {
			utils.AbortWithError(c, http.StatusForbidden, "error.forbidden", "You can only access your own bookings")
			return
		}
		c.Next()
	}
}

// GetUserID returns the logged-in user's ID from context
func GetUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetSessionToken returns the token RequireSession accepted
func GetSessionToken(c *gin.Context) string {
	return c.GetString(ContextKeySessionToken)
}
