package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"carrier/internal/handler"
	"carrier/internal/middleware"
	redisstore "carrier/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	CarrierHandler   *handler.CarrierHandler
	SearchHandler    *handler.SearchHandler
	IdempotencyStore redisstore.ResponseStoreInterface
	NewRelicApp      *newrelic.Application
	JWTSecret        []byte
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.Default())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Every carrier endpoint requires an authenticated caller, and
	// serves time-sensitive data that must never be cached. Idempotency
	// replay runs after auth: its store is keyed by the resolved user,
	// and an unauthenticated repeat must still get a 401.
	authed := router.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret))
	authed.Use(middleware.NoStoreMiddleware())
	if deps.IdempotencyStore != nil {
		authed.Use(middleware.IdempotencyMiddleware(deps.IdempotencyStore))
	}
	{
		carrier := authed.Group("/carrier")
		{
			carrier.POST("/register", deps.CarrierHandler.Register)
			carrier.POST("/ping", deps.CarrierHandler.Ping)
			carrier.POST("/status", deps.CarrierHandler.SetStatus)
			carrier.GET("/me", deps.CarrierHandler.Me)
		}

		authed.GET("/carriers/near", deps.SearchHandler.Near)
	}

	return router
}
