package evidence

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, publicLimit gin.HandlerFunc) {
	router.POST("/evidence", publicLimit, handler.Upload)
}
