package pricing

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	models := router.Group("/models")
	models.GET("", List)
	models.GET("/:model_id", Get)
}
