package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"smart-store/internal/checkout"
	"smart-store/internal/config"
	"smart-store/internal/database"
	custommiddleware "smart-store/internal/middleware"
	"smart-store/internal/repository"
	"smart-store/internal/service"
	"smart-store/internal/session"
	"smart-store/internal/storage"
	"smart-store/internal/telemetry"
	"smart-store/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the collaborators built by main
type Dependencies struct {
	Database database.Service
	// Redis is optional; without it rate limiting is off
	Redis    *redis.Client
	Sessions session.Store
	Images   storage.ImageStore
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, deps),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// NewRouter builds the full HTTP handler
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies) http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))
	if cfg.Tracing.Enabled {
		router.Use(telemetry.Middleware(cfg.Tracing.ServiceName, "/health", "/keepalive"))
	}

	products := repository.NewProductRepository(deps.Database.DB())

	formatter := checkout.NewFormatter(checkout.Config{
		StoreName:      cfg.Store.Name,
		CountryCode:    cfg.Store.CountryCode,
		CurrencySymbol: cfg.Store.CurrencySymbol,
		DeliveryFee:    cfg.Store.DeliveryFee,
		WhatsAppNumber: cfg.Store.WhatsAppNumber,
	})

	shopService := service.NewShopService(products, deps.Sessions, formatter, logger)
	adminService := service.NewAdminService(
		products,
		deps.Images,
		deps.Sessions,
		cfg.Admin.Password,
		cfg.Import.MaxRows,
		logger,
	)

	codec := session.NewCookieCodec(cfg.Session.Secret, cfg.Session.TTL, !cfg.IsDevelopment())

	transport.NewHealthHandler(deps.Database, products, logger).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.SessionMiddleware(codec, logger))

		r.Group(func(r chi.Router) {
			if deps.Redis != nil {
				r.Use(custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
					RequestsPerWindow: cfg.RateLimit.Requests,
					Window:            cfg.RateLimit.Window,
					KeyPrefix:         "rate_limit:shop",
				}, logger))
			}
			transport.NewShopHandler(shopService, logger).RegisterRoutes(r)
		})

		requireAdmin := custommiddleware.RequireAdmin(adminService, logger)
		transport.NewAdminHandler(adminService, logger).RegisterRoutes(r, requireAdmin)
	})

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Database != nil {
		if err := s.deps.Database.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if closer, ok := s.deps.Images.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error("Failed to close image storage client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
