package dashboard

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the staff read endpoints behind teacher.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, teacher ...gin.HandlerFunc) {
	staff := router.Group("/reports")
	staff.Use(teacher...)
	{
		staff.GET("", handler.List)
		staff.GET("/:id", handler.Get)
		staff.POST("/:id/analysis", handler.Reanalyze)
	}
}
