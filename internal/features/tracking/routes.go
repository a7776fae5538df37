package tracking

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, optionalAuth, publicLimit gin.HandlerFunc) {
	router.GET("/track/:code", publicLimit, optionalAuth, handler.Lookup)
}
