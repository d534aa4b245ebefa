package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carrier/internal/app"
	"carrier/internal/config"
	"carrier/internal/handler"
	"carrier/internal/logger"
	redisstore "carrier/internal/redis"
	"carrier/internal/repository/postgres"
	"carrier/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New("carrier")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			log.Warn("failed to initialize New Relic", logger.Error(err))
			nrApp = nil
		} else {
			log.Info("New Relic enabled", logger.String("app", cfg.NewRelic.AppName))
		}
	}

	if cfg.Database.Migrate {
		if err := app.RunMigrations(cfg.Database); err != nil {
			log.Error("migrations failed", logger.Error(err))
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			// The cache and idempotency layers are optional; run without them.
			log.Warn("redis unavailable, continuing without cache", logger.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("connected to Redis")
		}
	}

	server := wireServer(db, redisClient, nrApp, cfg, log)

	go func() {
		log.Info("starting server", logger.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logger.Error(err))
		os.Exit(1)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log logger.ILogger) *http.Server {
	carrierRepo := postgres.NewCarrierRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)

	var cache redisstore.ProfileCacheInterface
	var responses redisstore.ResponseStoreInterface
	if redisClient != nil {
		cache = redisstore.NewProfileCache(redisClient)
		responses = redisstore.NewResponseStore(redisClient)
	}

	registry := service.NewRegistry(carrierRepo, vehicleRepo, cache, log)
	matcher := service.NewMatcher(carrierRepo, log)

	carrierHandler := handler.NewCarrierHandler(registry)
	searchHandler := handler.NewSearchHandler(matcher)

	router := app.NewRouter(app.RouterDeps{
		CarrierHandler:   carrierHandler,
		SearchHandler:    searchHandler,
		IdempotencyStore: responses,
		NewRelicApp:      nrApp,
		JWTSecret:        []byte(cfg.Auth.JWTSecret),
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
