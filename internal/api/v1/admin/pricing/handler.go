package pricing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

type UpsertPricingInput struct {
	ModelID          string  `json:"model_id" binding:"required"`
	Provider         string  `json:"provider" binding:"required,oneof=anthropic openai gemini"`
	DisplayName      string  `json:"display_name"`
	InputPricePer1K  float64 `json:"input_price_per_1k" binding:"min=0"`
	OutputPricePer1K float64 `json:"output_price_per_1k" binding:"min=0"`
	ContextWindow    int     `json:"context_window" binding:"min=0"`
}

// Upsert creates or updates a model's pricing row.
func Upsert(c *gin.Context) {
	var input UpsertPricingInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	pricing := &models.ModelPricing{
		ModelID:          input.ModelID,
		Provider:         input.Provider,
		DisplayName:      input.DisplayName,
		InputPricePer1K:  input.InputPricePer1K,
		OutputPricePer1K: input.OutputPricePer1K,
		ContextWindow:    input.ContextWindow,
	}
	if err := services.UpsertModelPricing(pricing); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to save model pricing"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Model pricing saved", pricing))
}

// Delete removes a model's pricing, taking it out of the catalog.
func Delete(c *gin.Context) {
	if err := services.DeleteModelPricing(c.Param("model_id")); err != nil {
		if errors.Is(err, services.ErrUnknownModel) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete model pricing"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Model pricing deleted", nil))
}
