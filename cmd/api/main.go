package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-store/internal/config"
	"smart-store/internal/database"
	"smart-store/internal/logger"
	"smart-store/internal/server"
	"smart-store/internal/session"
	"smart-store/internal/storage"
	"smart-store/internal/telemetry"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, shutdownTracing telemetry.ShutdownFunc, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Failed to flush traces", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, "smart-store-api")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	if cfg.Admin.Password == "" {
		log.Warn("ADMIN_PASSWORD is not set, admin login is disabled")
	}
	if cfg.Session.Secret == "" {
		if !cfg.IsDevelopment() {
			log.Fatal("SESSION_SECRET must be set in production")
		}
		cfg.Session.Secret = uuid.NewString()
		log.Warn("SESSION_SECRET is not set, using a random secret; sessions will not survive a restart")
	}

	shutdownTracing, err := telemetry.Setup(cfg.Tracing, os.Stdout)
	if err != nil {
		log.Fatal("Failed to set up tracing", zap.Error(err))
	}

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	health := dbService.Health(ctx)
	cancel()
	log.Info("Database health check", zap.Any("health", health))

	if err := database.RunMigrations(dbService.DB(), log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully")

	deps := server.Dependencies{Database: dbService}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	if cfg.Redis.Enabled() {
		deps.Redis = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := deps.Redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}

		deps.Sessions = session.NewRedisStore(deps.Redis, cfg.Session.TTL)
		log.Info("Using redis session store", zap.String("addr", deps.Redis.Options().Addr))
	} else {
		memory := session.NewMemoryStore(cfg.Session.TTL)
		go memory.RunSweeper(sweepCtx, time.Minute)
		deps.Sessions = memory
		log.Info("Using in-memory session store; rate limiting is off")
	}

	if cfg.Storage.Bucket != "" {
		images, err := storage.NewGCSImageStore(context.Background(), cfg.Storage)
		if err != nil {
			log.Fatal("Failed to create image storage", zap.Error(err))
		}
		deps.Images = images
		log.Info("Using GCS image storage", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		deps.Images = storage.Disabled{}
		log.Warn("GCS_BUCKET is not set, image uploads are disabled")
	}

	srv := server.NewServer(cfg, log, deps)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, shutdownTracing, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
