package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/healthcapacity/internal/adapters/cache"
	"github.com/zatekoja/healthcapacity/internal/adapters/database"
	"github.com/zatekoja/healthcapacity/internal/api/handlers"
	"github.com/zatekoja/healthcapacity/internal/api/middleware"
	"github.com/zatekoja/healthcapacity/internal/api/routes"
	"github.com/zatekoja/healthcapacity/internal/application/services"
	"github.com/zatekoja/healthcapacity/internal/domain/repositories"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/clients/healthcareapi"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/clients/redis"
	"github.com/zatekoja/healthcapacity/internal/infrastructure/observability"
	"github.com/zatekoja/healthcapacity/pkg/config"
)

const cacheKeyPrefix = "healthcapacity:"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Snapshot source
	var source repositories.FacilityStatisticsSource
	switch cfg.Snapshot.Source {
	case "database":
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		source = database.NewFacilityStatisticAdapter(pgClient.DB(), cfg.Snapshot.ReportingPeriodDays, metrics)
		log.Info().Msg("Facility statistics served from the PostgreSQL mirror")
	case "api":
		source = healthcareapi.NewClient(cfg.HealthcareAPI, cfg.Snapshot.ReportingPeriodDays)
		log.Info().Str("base_url", cfg.HealthcareAPI.BaseURL).Msg("Facility statistics served from the healthcare API")
	default:
		log.Fatal().Str("source", cfg.Snapshot.Source).Msg("Unknown snapshot source")
	}

	// Wrap with snapshot caching if Redis is available
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			// Continue without Redis, every request loads a fresh snapshot
			log.Warn().Err(err).Msg("Failed to initialize Redis client")
		} else {
			defer redisClient.Close()
			cacheProvider := cache.NewRedisAdapter(redisClient.Client(), cacheKeyPrefix)
			cached := database.NewCachedStatisticsSource(source, cacheProvider, cfg.Snapshot.CacheTTLSeconds, cfg.Snapshot.Source, metrics)
			source = cached
			log.Info().Int("ttl_seconds", cfg.Snapshot.CacheTTLSeconds).Msg("Snapshot cache enabled")

			if interval := cfg.Snapshot.WarmIntervalSeconds; interval > 0 && cfg.Snapshot.CacheTTLSeconds > 0 {
				warmer := services.NewSnapshotWarmingService(cached)
				go warmer.StartPeriodicWarming(ctx, time.Duration(interval)*time.Second)
				log.Info().Int("interval_seconds", interval).Msg("Snapshot warming started")
			}
		}
	}

	// Redirection engine
	var table *services.CompatibilityTable
	if path := cfg.Redirection.CompatibilityTablePath; path != "" {
		table, err = services.LoadCompatibilityTable(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to load compatibility table")
		}
		log.Info().Str("path", path).Int("categories", len(table.Categories)).Msg("Compatibility table loaded")
	}
	engine := services.NewRedirectionEngine(cfg.Redirection, table)

	capacityService := services.NewCapacityService(source, engine, metrics)
	capacityHandler := handlers.NewCapacityHandler(capacityService)

	router := routes.NewRouter(capacityHandler, middleware.ParseAllowedOrigins(cfg.Server.AllowedOrigins), metrics)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
