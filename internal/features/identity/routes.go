package identity

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the session endpoints. publicLimit guards the
// unauthenticated sign-in endpoints.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware, publicLimit gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/anonymous", publicLimit, handler.Anonymous)
		auth.POST("/login", publicLimit, handler.Login)
		auth.POST("/logout", handler.Logout)
		auth.GET("/me", authMiddleware, handler.Me)
	}
}
