package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/addresscomplete/internal"
	"github.com/dukerupert/addresscomplete/internal/address"
	"github.com/dukerupert/addresscomplete/internal/canadapost"
	"github.com/dukerupert/addresscomplete/internal/handler/api"
	"github.com/dukerupert/addresscomplete/internal/middleware"
	"github.com/dukerupert/addresscomplete/internal/router"
	"github.com/dukerupert/addresscomplete/internal/routes"
	"github.com/dukerupert/addresscomplete/internal/telemetry"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Metrics registry
	logger.Info("Initializing metrics...")
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	lookupMetrics := telemetry.NewMetrics(cfg.Metrics.Namespace, registry)
	httpMetrics := middleware.NewMetrics(cfg.Metrics.Namespace, registry)
	logger.Info("Metrics initialized", "namespace", cfg.Metrics.Namespace)

	// Initialize AddressComplete provider
	logger.Info("Initializing AddressComplete client...")
	var provider canadapost.Provider
	client, err := canadapost.NewClient(canadapost.ClientConfig{
		APIKey:  cfg.CanadaPost.APIKey,
		BaseURL: cfg.CanadaPost.BaseURL,
		Timeout: cfg.CanadaPost.Timeout,
		Logger:  logger,
		Metrics: lookupMetrics,
	})
	switch {
	case errors.Is(err, canadapost.ErrMissingAPIKey):
		// Only reachable in dev; config rejects a missing key in prod.
		logger.Warn("CANADA_POST_API_KEY not set, lookups will return no suggestions")
		provider = canadapost.NewMockProvider()
	case err != nil:
		return fmt.Errorf("failed to initialize AddressComplete client: %w", err)
	default:
		provider = client
		logger.Info("AddressComplete client initialized", "base_url", cfg.CanadaPost.BaseURL)
	}

	// Initialize address validator
	logger.Info("Initializing address validator...")
	validateHandler, err := api.NewValidateHandler(address.NewBasicValidator(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize validate handler: %w", err)
	}
	logger.Info("Address validator initialized")

	// Configure rate limiting
	suggestionLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	defer suggestionLimiter.Stop()

	params := canadapost.ParamsFor(cfg.CanadaPost.Country, cfg.CanadaPost.Language)
	liveHandler := api.NewLiveHandler(api.LiveConfig{
		Provider:         provider,
		Params:           params,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		QueriesPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:            cfg.RateLimit.Burst,
		Metrics:          lookupMetrics,
		Logger:           logger,
	})

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithClientIP(),
		middleware.WithRequestLogger(logger),
		httpMetrics.Middleware,
		middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()),
		router.Logger(logger),
	)

	routes.RegisterAPIRoutes(r, routes.APIDeps{
		SuggestionsHandler: api.NewSuggestionsHandler(provider, params, lookupMetrics, logger),
		LiveHandler:        liveHandler,
		ValidateHandler:    validateHandler,
		PhoneHandler:       api.NewPhoneHandler(lookupMetrics),
		SuggestionLimiter:  suggestionLimiter,
	})
	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})
	logger.Debug("Routes registered", "routes", r.Routes())

	var h http.Handler = r
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		h = router.CORS(cfg.HTTP.AllowedOrigins)(r)
		logger.Info("CORS enabled", "origins", cfg.HTTP.AllowedOrigins)
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(int(cfg.Port))),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.CanadaPost.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...", "timeout", cfg.HTTP.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info("Server stopped")
		return nil
	})

	return g.Wait()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
