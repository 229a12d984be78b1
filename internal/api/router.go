package api

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/altovacio/duelo-de-plumas-sub002/config"
	adminDebugLog "github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/admin/debuglog"
	adminLedger "github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/admin/ledger"
	adminOrder "github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/admin/order"
	adminPricing "github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/admin/pricing"
	adminUser "github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/admin/user"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/agent"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/auth"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/contest"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/execution"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/pricing"
	userRoutes "github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/user"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/llm"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/middleware"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	registry, err := BuildProviderRegistry(cfg)
	if err != nil {
		return nil, err
	}
	engine := services.NewExecutionEngine(cfg, registry)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			userRoutes.RegisterRoutes(authorized)
			agent.RegisterRoutes(authorized)
			contest.RegisterRoutes(authorized)
			pricing.RegisterRoutes(authorized)
			execution.RegisterRoutes(authorized, engine)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminUser.RegisterRoutes(admin)
			adminLedger.RegisterRoutes(admin)
			adminOrder.RegisterRoutes(admin)
			adminPricing.RegisterRoutes(admin)
			adminDebugLog.RegisterRoutes(admin)
		}
	}

	return router, nil
}

// BuildProviderRegistry registers one provider adapter per configured
// API key. A provider without a key is simply absent; executions
// against its models fail with a provider error instead of a panic.
func BuildProviderRegistry(cfg *config.Config) (*llm.Registry, error) {
	registry := llm.NewRegistry()

	if cfg.AnthropicAPIKey != "" {
		registry.Register(llm.NewAnthropicProvider(cfg.AnthropicAPIKey))
	}
	if cfg.OpenAIAPIKey != "" {
		registry.Register(llm.NewOpenAIProvider(cfg.OpenAIAPIKey))
	}
	if cfg.GeminiAPIKey != "" {
		provider, err := llm.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		registry.Register(provider)
	}

	if len(registry.Names()) == 0 {
		zap.L().Warn("no LLM provider keys configured; all executions will fail")
	}

	return registry, nil
}
