package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerToken extracts the token from the Authorization header. Both
// "Bearer <token>" (case-insensitive) and a raw token are accepted.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return "", false
	}

	fields := strings.Fields(authHeader)
	if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
		return fields[1], true
	}
	if len(fields) == 1 {
		return fields[0], true
	}
	return "", false
}

// WebSocketToken returns the bearer token or, for browser WebSocket clients
// that cannot set headers, the "token" query parameter.
func WebSocketToken(c *gin.Context) (string, bool) {
	if token, ok := BearerToken(c); ok {
		return token, true
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}
