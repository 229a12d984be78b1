package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	user := router.Group("/user")
	user.GET("/me", CurrentUser)
	user.GET("/balance", Balance)
	user.GET("/ledger", LedgerHistory)
}
