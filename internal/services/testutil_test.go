package services

import (
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	allModels := []interface{}{
		&models.User{},
		&models.Agent{},
		&models.AgentExecution{},
		&models.ModelPricing{},
		&models.CreditLedgerEntry{},
		&models.CreditOrder{},
		&models.Contest{},
		&models.Submission{},
		&models.DebugLogEntry{},
	}

	db.Migrator().DropTable(allModels...)
	if err := db.AutoMigrate(allModels...); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	database.RedisClient = nil
}

func setupTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func seedUser(username string, balance int64) *models.User {
	user := &models.User{
		Username: username,
		Password: "hashed",
		Role:     "user",
		Balance:  balance,
	}
	if err := database.DB.Create(user).Error; err != nil {
		panic(err)
	}
	return user
}

func seedPricing(modelID, provider string, inPer1K, outPer1K float64) *models.ModelPricing {
	pricing := &models.ModelPricing{
		ModelID:          modelID,
		Provider:         provider,
		InputPricePer1K:  inPer1K,
		OutputPricePer1K: outPer1K,
		ContextWindow:    128000,
	}
	if err := database.DB.Create(pricing).Error; err != nil {
		panic(err)
	}
	return pricing
}
