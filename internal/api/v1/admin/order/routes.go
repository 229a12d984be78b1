package order

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	orders.POST("", Create)
	orders.GET("", List)
	orders.POST("/:id/complete", Complete)
	orders.POST("/:id/cancel", Cancel)
}
