package contest

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	contests := router.Group("/contests")
	contests.POST("", Create)
	contests.GET("", List)
	contests.GET("/:id", Get)
	contests.POST("/:id/submissions", Submit)
}
