package services

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/llm"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

var ErrUnknownModel = errors.New("unknown model")

const (
	pricingCacheKeyPrefix = "pricing:model:"
	pricingCacheDuration  = time.Hour
)

// PricingConfig holds the credit conversion constants. Injected rather
// than read from ambient config so estimates are reproducible in tests.
type PricingConfig struct {
	CreditsPerDollar  float64
	MinimumCreditCost int64
}

// CostBreakdown is the result of one cost computation.
type CostBreakdown struct {
	PromptTokens     int
	CompletionTokens int
	MonetaryCost     float64
	Credits          int64
}

// GetModelPricing retrieves the pricing row for a model, using cache.
// A model absent from the table is an error: execution must never
// proceed against an unpriced model.
func GetModelPricing(modelID string) (*models.ModelPricing, error) {
	cacheKey := pricingCacheKeyPrefix + modelID

	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var pricing models.ModelPricing
			if err := json.Unmarshal([]byte(val), &pricing); err == nil {
				return &pricing, nil
			}
		}
	}

	var pricing models.ModelPricing
	if err := database.DB.Where("model_id = ?", modelID).First(&pricing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownModel
		}
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(pricing); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, pricingCacheDuration)
		}
	}

	return &pricing, nil
}

// ComputeCost converts token counts into monetary cost and credits for
// the given pricing row. Credits are ceiled and floored at the
// configured minimum so that trivially short calls still cost something.
func ComputeCost(pricing *models.ModelPricing, promptTokens, completionTokens int, cfg PricingConfig) *CostBreakdown {
	monetary := float64(promptTokens)/1000*pricing.InputPricePer1K +
		float64(completionTokens)/1000*pricing.OutputPricePer1K

	credits := int64(math.Ceil(monetary * cfg.CreditsPerDollar))
	if credits < cfg.MinimumCreditCost {
		credits = cfg.MinimumCreditCost
	}

	return &CostBreakdown{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		MonetaryCost:     monetary,
		Credits:          credits,
	}
}

// EstimateCredits computes the pre-call cost from heuristic token
// counts. Usable before any provider call.
func EstimateCredits(modelID string, promptTokens, completionTokens int, cfg PricingConfig) (*CostBreakdown, error) {
	pricing, err := GetModelPricing(modelID)
	if err != nil {
		return nil, err
	}
	return ComputeCost(pricing, promptTokens, completionTokens, cfg), nil
}

// FinalizeCredits computes the definitive cost from the token usage the
// provider actually reported.
func FinalizeCredits(modelID string, usage llm.Usage, cfg PricingConfig) (*CostBreakdown, error) {
	pricing, err := GetModelPricing(modelID)
	if err != nil {
		return nil, err
	}
	return ComputeCost(pricing, usage.PromptTokens, usage.CompletionTokens, cfg), nil
}

// ListModelPricing returns every priced model.
func ListModelPricing() ([]models.ModelPricing, error) {
	var pricings []models.ModelPricing
	if err := database.DB.Order("provider, model_id").Find(&pricings).Error; err != nil {
		return nil, err
	}
	return pricings, nil
}

// UpsertModelPricing creates or updates the pricing row for a model and
// invalidates its cache entry.
func UpsertModelPricing(pricing *models.ModelPricing) error {
	var existing models.ModelPricing
	err := database.DB.Where("model_id = ?", pricing.ModelID).First(&existing).Error
	switch {
	case err == nil:
		pricing.ID = existing.ID
		if err := database.DB.Save(pricing).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := database.DB.Create(pricing).Error; err != nil {
			return err
		}
	default:
		return err
	}

	invalidatePricingCache(pricing.ModelID)
	return nil
}

// DeleteModelPricing removes a model's pricing row, making the model
// unavailable for execution.
func DeleteModelPricing(modelID string) error {
	result := database.DB.Where("model_id = ?", modelID).Delete(&models.ModelPricing{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUnknownModel
	}

	invalidatePricingCache(modelID)
	return nil
}

func invalidatePricingCache(modelID string) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, pricingCacheKeyPrefix+modelID)
	}
}
