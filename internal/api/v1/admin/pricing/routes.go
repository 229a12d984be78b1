package pricing

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	models := router.Group("/models")
	models.PUT("", Upsert)
	models.DELETE("/:model_id", Delete)
}
