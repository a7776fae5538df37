package reports

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers submission and the staff write endpoints.
// teacher must authenticate the caller and require the Teacher role.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, optionalAuth, publicLimit gin.HandlerFunc, teacher ...gin.HandlerFunc) {
	router.POST("/reports", publicLimit, optionalAuth, handler.Submit)

	staff := router.Group("/reports/:id")
	staff.Use(teacher...)
	{
		staff.PATCH("/status", handler.UpdateStatus)
		staff.PUT("/reply", handler.Reply)
	}
}
