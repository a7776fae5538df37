package identity

import (
	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/schoolsafe/internal/middleware"
	"github.com/xyz-asif/schoolsafe/internal/pkg/response"
)

// Context keys set by the auth middleware. userID and email are also read by
// the request logger.
const (
	ContextPrincipal = "principal"
	ContextUserID    = "userID"
	ContextEmail     = "email"
)

// NewAuthMiddleware requires a verifiable bearer token.
func NewAuthMiddleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := middleware.BearerToken(c)
		if !ok {
			response.Unauthorized(c, "Authorization header required", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		p, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}

		setPrincipal(c, p)
		c.Next()
	}
}

// NewOptionalAuthMiddleware attaches the principal when a valid token is
// present and otherwise lets the request through as a guest.
func NewOptionalAuthMiddleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := middleware.BearerToken(c); ok {
			if p, err := v.Verify(c.Request.Context(), token); err == nil {
				setPrincipal(c, p)
			}
		}
		c.Next()
	}
}

// RequireTeacher must run after NewAuthMiddleware.
func RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ResolveRole(PrincipalFrom(c)) != RoleTeacher {
			response.AuthorizationError(c, "Teacher access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal attached to the request, or nil.
func PrincipalFrom(c *gin.Context) *Principal {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}

func setPrincipal(c *gin.Context, p *Principal) {
	c.Set(ContextPrincipal, p)
	c.Set(ContextUserID, p.UID)
	c.Set(ContextEmail, p.Email)
}
