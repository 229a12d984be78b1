package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/llm"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

var testPricingCfg = PricingConfig{CreditsPerDollar: 1000, MinimumCreditCost: 1}

func TestComputeCostCeilsCredits(t *testing.T) {
	pricing := &models.ModelPricing{
		ModelID:          "test-model",
		Provider:         "anthropic",
		InputPricePer1K:  0.003,
		OutputPricePer1K: 0.015,
	}

	// 1000 in + 1000 out = $0.018 -> 18 credits exactly.
	cost := ComputeCost(pricing, 1000, 1000, testPricingCfg)
	assert.Equal(t, int64(18), cost.Credits)
	assert.InDelta(t, 0.018, cost.MonetaryCost, 1e-9)

	// 100 in + 100 out = $0.0018 -> ceil(1.8) = 2 credits.
	cost = ComputeCost(pricing, 100, 100, testPricingCfg)
	assert.Equal(t, int64(2), cost.Credits)
}

func TestComputeCostMinimumFloor(t *testing.T) {
	pricing := &models.ModelPricing{
		ModelID:          "cheap-model",
		Provider:         "openai",
		InputPricePer1K:  0.0000001,
		OutputPricePer1K: 0.0000001,
	}

	cfg := PricingConfig{CreditsPerDollar: 1000, MinimumCreditCost: 5}
	cost := ComputeCost(pricing, 1, 1, cfg)
	assert.Equal(t, int64(5), cost.Credits)

	// Zero tokens still hit the floor.
	cost = ComputeCost(pricing, 0, 0, cfg)
	assert.Equal(t, int64(5), cost.Credits)
}

func TestGetModelPricingUnknownModel(t *testing.T) {
	setupTestDB()

	_, err := GetModelPricing("no-such-model")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestGetModelPricingUsesCache(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	seedPricing("claude-sonnet-4", "anthropic", 0.003, 0.015)

	first, err := GetModelPricing("claude-sonnet-4")
	assert.NoError(t, err)
	assert.Equal(t, "anthropic", first.Provider)
	assert.True(t, mr.Exists("pricing:model:claude-sonnet-4"))

	// Remove the row; the cached copy must still serve.
	database.DB.Where("model_id = ?", "claude-sonnet-4").Delete(&models.ModelPricing{})

	second, err := GetModelPricing("claude-sonnet-4")
	assert.NoError(t, err)
	assert.Equal(t, first.ModelID, second.ModelID)
}

func TestEstimateCredits(t *testing.T) {
	setupTestDB()
	seedPricing("gpt-5", "openai", 0.00125, 0.01)

	// 2000 prompt + 4096 completion = $0.0025 + $0.04096 -> ceil(43.46) = 44.
	cost, err := EstimateCredits("gpt-5", 2000, 4096, testPricingCfg)
	assert.NoError(t, err)
	assert.Equal(t, int64(44), cost.Credits)

	_, err = EstimateCredits("missing", 10, 10, testPricingCfg)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestFinalizeCredits(t *testing.T) {
	setupTestDB()
	seedPricing("gemini-2.5-pro", "gemini", 0.00125, 0.01)

	cost, err := FinalizeCredits("gemini-2.5-pro", llm.Usage{PromptTokens: 800, CompletionTokens: 1200}, testPricingCfg)
	assert.NoError(t, err)
	assert.Equal(t, 800, cost.PromptTokens)
	assert.Equal(t, 1200, cost.CompletionTokens)
	// $0.001 + $0.012 = $0.013 -> 13 credits.
	assert.Equal(t, int64(13), cost.Credits)
}

func TestUpsertAndDeleteModelPricing(t *testing.T) {
	setupTestDB()

	pricing := &models.ModelPricing{
		ModelID:          "claude-opus-4",
		Provider:         "anthropic",
		InputPricePer1K:  0.015,
		OutputPricePer1K: 0.075,
	}
	assert.NoError(t, UpsertModelPricing(pricing))

	// Update in place keeps a single row.
	pricing.OutputPricePer1K = 0.06
	assert.NoError(t, UpsertModelPricing(pricing))

	all, err := ListModelPricing()
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 0.06, all[0].OutputPricePer1K)

	assert.NoError(t, DeleteModelPricing("claude-opus-4"))
	assert.ErrorIs(t, DeleteModelPricing("claude-opus-4"), ErrUnknownModel)
}
