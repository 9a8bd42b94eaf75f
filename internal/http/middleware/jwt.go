package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/db"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/identity"
)

// SessionCookie carries the bearer token for page loads.
const SessionCookie = "doodeurim-session"

// BearerToken returns the token from "Authorization: Bearer <token>" or,
// failing that, from the session cookie.
func BearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// JWTMiddleware verifies the bearer token, checks the user still exists,
// and sets "currentUser" in context.
func JWTMiddleware(issuer *identity.Issuer, users db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth header"})
			return
		}

		uid, err := issuer.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if _, err := users.GetUserByID(c.Request.Context(), uid); err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("token for unknown user")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.Set(currentUserKey, uid)
		c.Next()
	}
}
