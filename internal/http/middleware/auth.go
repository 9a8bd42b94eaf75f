package middleware

import "github.com/gin-gonic/gin"

const currentUserKey = "currentUser"

// GetCurrentUser retrieves the user id from the Gin context (after JWTMiddleware has run).
func GetCurrentUser(c *gin.Context) (string, bool) {
	u, exists := c.Get(currentUserKey)
	if !exists {
		return "", false
	}
	uid, ok := u.(string)
	return uid, ok && uid != ""
}
