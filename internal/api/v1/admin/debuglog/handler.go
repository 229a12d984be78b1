package debuglog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

// List returns recent debug log entries, newest first. Only populated
// when the debug flag is enabled.
func List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	var operation *models.AgentType
	if op := c.Query("operation"); op != "" {
		t := models.AgentType(op)
		operation = &t
	}

	entries, err := services.FindDebugLogEntries(operation, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list debug log entries"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Debug log entries retrieved", entries))
}
