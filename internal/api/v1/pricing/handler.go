package pricing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

// List returns every priced model, the catalog users pick from.
func List(c *gin.Context) {
	pricings, err := services.ListModelPricing()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list model pricing"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Model pricing retrieved", pricings))
}

// Get returns one model's pricing row.
func Get(c *gin.Context) {
	pricing, err := services.GetModelPricing(c.Param("model_id"))
	if err != nil {
		if errors.Is(err, services.ErrUnknownModel) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load model pricing"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Model pricing retrieved", pricing))
}
