package agent

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	agents := router.Group("/agents")
	agents.POST("", Create)
	agents.GET("", List)
	agents.GET("/:id", Get)
	agents.PATCH("/:id", Update)
	agents.DELETE("/:id", Delete)
}
