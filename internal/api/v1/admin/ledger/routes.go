package ledger

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	ledger := router.Group("/ledger")
	ledger.GET("", List)
	ledger.GET("/export", Export)
	ledger.POST("/adjust", Adjust)
}
