package execution

import (
	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
)

func RegisterRoutes(router *gin.RouterGroup, engine *services.ExecutionEngine) {
	h := &Handler{Engine: engine}

	executions := router.Group("/executions")
	executions.POST("/writer", h.ExecuteWriter)
	executions.POST("/judge", h.ExecuteJudge)
	executions.POST("/estimate", h.Estimate)
	executions.GET("", h.List)
	executions.GET("/:id", h.Get)
}
