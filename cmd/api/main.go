package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"luxe/internal/catalog"
	"luxe/internal/config"
	"luxe/internal/database"
	"luxe/internal/handler"
	"luxe/internal/middleware"
	"luxe/internal/razorpay"
	"luxe/internal/repository"
	"luxe/internal/router"
	"luxe/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting luxe API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	pincodeRepo := repository.NewPincodeRepository(pool, logger)

	// Optionally import the product feed at startup
	if err := importCatalog(ctx, cfg.Catalog, productRepo, logger); err != nil {
		// A stale catalog is preferable to a server that won't start.
		logger.Warn().Err(err).Msg("catalog import failed, continuing with existing catalog")
	}

	// Initialize payment gateway client
	gateway := razorpay.NewClient(razorpay.Config{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		BaseURL:       cfg.Razorpay.BaseURL,
	}, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	stockService := service.NewStockService(productRepo, logger)
	pincodeService := service.NewPincodeService(pincodeRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, pincodeRepo, gateway, service.CheckoutRules{
		FreeShippingThreshold: cfg.Checkout.FreeShippingThreshold,
		ShippingCharge:        cfg.Checkout.ShippingCharge,
		CODCharge:             cfg.Checkout.CODCharge,
		CODMinimum:            cfg.Checkout.CODMinimum,
	}, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Payment: handler.NewPaymentHandler(orderService, logger),
		Webhook: handler.NewWebhookHandler(orderService, gateway, logger),
		Stock:   handler.NewStockHandler(stockService, logger),
		Pincode: handler.NewPincodeHandler(pincodeService, logger),
		Admin:   handler.NewAdminHandler(orderService, logger),
	}

	// Initialize rate limiter
	limiter, redisClient := newLimiter(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize router
	mux := router.New(handlers, cfg.Admin.APIKey, limiter, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// importCatalog loads the configured product feed, if any, and upserts it
// into the catalog tables before the server starts accepting traffic.
func importCatalog(ctx context.Context, cfg config.CatalogConfig, productRepo repository.ProductRepository, logger zerolog.Logger) error {
	var (
		loader catalog.Loader
		source string
	)

	switch {
	case cfg.S3Enabled:
		s3Loader, err := catalog.NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 feed loader: %w", err)
		}
		loader = s3Loader
		source = cfg.FeedKey

	case cfg.FeedPath != "":
		loader = catalog.NewFileLoader(logger)
		source = cfg.FeedPath

	default:
		logger.Info().Msg("no product feed configured, skipping catalog import")
		return nil
	}

	importer := catalog.NewImporter(loader, productRepo, logger)
	imported, err := importer.Import(ctx, source)
	if err != nil {
		return err
	}

	logger.Info().Int("products", imported).Msg("catalog import finished")
	return nil
}

// newLimiter builds the public-API rate limiter. With Redis enabled the
// window counters are shared across instances; otherwise they are
// process-local. The Redis client is returned so the caller can close it.
func newLimiter(cfg *config.Config, logger zerolog.Logger) (middleware.Limiter, *redis.Client) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}

	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info().
			Str("addr", cfg.Redis.Addr).
			Int("requests", cfg.RateLimit.Requests).
			Dur("window", window).
			Msg("using Redis-backed rate limiter")
		return middleware.NewRedisLimiter(client, cfg.RateLimit.Requests, window), client
	}

	logger.Info().
		Int("requests", cfg.RateLimit.Requests).
		Dur("window", window).
		Msg("using in-memory rate limiter")
	return middleware.NewMemoryLimiter(cfg.RateLimit.Requests, window), nil
}
