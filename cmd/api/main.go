package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/srgjo27/campus_ticket/internal/adapter/cache"
	"github.com/srgjo27/campus_ticket/internal/adapter/codec"
	"github.com/srgjo27/campus_ticket/internal/adapter/handler"
	"github.com/srgjo27/campus_ticket/internal/adapter/repository/memory"
	"github.com/srgjo27/campus_ticket/internal/adapter/repository/postgres"
	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/ports"
	"github.com/srgjo27/campus_ticket/internal/core/services"
	"github.com/srgjo27/campus_ticket/internal/platform/config"
	"github.com/srgjo27/campus_ticket/internal/platform/database"
	"github.com/srgjo27/campus_ticket/internal/platform/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := pflag.String("config", "", "path to a config file (yaml, json or toml)")
	pflag.Parse()

	v, err := config.New(*configPath)
	if err != nil {
		logger.Fatalf(ctx, "Failed to read config: %v", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		logger.Fatalf(ctx, "Invalid config: %v", err)
	}

	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warnf(ctx, "Unknown log level %q, keeping info", cfg.LogLevel)
	}

	checks := map[string]handler.HealthCheck{}

	var (
		tickets   ports.TicketRepository
		operators ports.OperatorRepository
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			DBName:       cfg.Database.Name,
			MaxOpenConns: cfg.Database.MaxOpenConns,
		})
		if err != nil {
			logger.Fatalf(ctx, "Failed to connect to db after retries: %v", err)
		}
		defer db.Close()

		if err := database.EnsureSchema(ctx, db); err != nil {
			logger.Fatalf(ctx, "Failed to apply schema: %v", err)
		}

		tickets = postgres.NewTicketRepository(db)
		operators = postgres.NewOperatorRepository(db)
		checks["database"] = pingCheck(db)
	default:
		logger.Warnf(ctx, "Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		for _, raw := range cfg.BootstrapAdmins {
			id, err := uuid.Parse(raw)
			if err != nil {
				logger.Fatalf(ctx, "Invalid %s entry %q: %v", config.BootstrapAdmins, raw, err)
			}
			store.PutOperator(domain.OperatorScope{OperatorID: id, IsGlobalAdmin: true})
		}
		tickets, operators = store, store
	}

	if cfg.RedisEnabled {
		logger.Infof(ctx, "Connecting to Redis at %s...", cfg.RedisAddress)

		redisClient, err := cache.NewRedisClient(ctx, cache.ClientConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Fatalf(ctx, "Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		operators = cache.NewOperatorScopeCache(operators, redisClient, cfg.OperatorScopeTTL)
		checks["redis"] = redisCheck(redisClient)
	}

	tokenCodec, err := codec.New(cfg.TokenKey)
	if err != nil {
		logger.Fatalf(ctx, "Failed to build token codec: %v", err)
	}

	ticketService := services.NewTicketService(tickets, operators, tokenCodec)
	redemptionService := services.NewRedemptionService(tickets, operators, tokenCodec,
		services.WithMaxTokenAge(cfg.MaxTokenAge))
	registry := services.NewScanSessionRegistry(redemptionService, cfg.ScanIdleTimeout)

	go registry.RunIdleReaper(ctx, cfg.ScanReapInterval)

	router := handler.NewRouter(handler.Handlers{
		Tickets:      handler.NewTicketHandler(ticketService),
		Redemptions:  handler.NewRedemptionHandler(redemptionService),
		ScanSessions: handler.NewScanHandler(registry),
		HealthChecks: checks,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewServerHandler(router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Infof(ctx, "Server starting on port :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf(ctx, "Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "Server forced to shutdown: %v", err)
	}

	cancel()
	registry.CloseAll()

	logger.Info(ctx, "Server exiting")
}

func pingCheck(db *sql.DB) handler.HealthCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

func redisCheck(client *redis.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return cache.HealthCheck(ctx, client)
	}
}
