package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/api"
	"github.com/bobby-s-dev/weather-widget/internal/config"
	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/internal/preferences"
	"github.com/bobby-s-dev/weather-widget/internal/services"
	"github.com/bobby-s-dev/weather-widget/pkg/client"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Initialize logger
	logger, level := newLogger()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Weather Widget")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := level.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		logger.Warn("Invalid LOG_LEVEL, keeping info", zap.String("level", cfg.Server.LogLevel))
	}

	clientConfig := client.ClientConfig{
		Timeout:        cfg.WeatherAPI.RequestTimeout,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		Multiplier:     cfg.Retry.Multiplier,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}
	forecasts := client.NewOpenMeteoClient(cfg.WeatherAPI.OpenMeteoURL, clientConfig, logger)

	geocoder := client.NewReverseGeocoder(client.GeocoderConfig{
		BaseURL:   cfg.WeatherAPI.GeocodeURL,
		Timeout:   cfg.WeatherAPI.GeocodeTimeout,
		CacheTTL:  cfg.WeatherAPI.GeocodeCacheTTL,
		RateLimit: cfg.WeatherAPI.GeocodeRateLimit,
	}, logger)

	resolver := services.NewLocationResolver(newGeolocator(cfg, logger), geocoder, services.LocationConfig{
		Position: models.PositionOptions{
			Timeout:      cfg.Location.Timeout,
			HighAccuracy: cfg.Location.HighAccuracy,
			MaxAge:       cfg.Location.MaxAge,
		},
		GeocodeTimeout: cfg.WeatherAPI.GeocodeTimeout,
		Fallback: models.LocationInfo{
			Coordinates: models.Coordinates{Latitude: cfg.Location.FallbackLat, Longitude: cfg.Location.FallbackLon},
			DisplayName: cfg.Location.FallbackName,
		},
	}, logger)

	prefs := preferences.New(preferences.Config{
		Backend:  cfg.Preferences.Backend,
		Path:     cfg.Preferences.Path,
		RedisURL: cfg.Preferences.RedisURL,
		RedisKey: cfg.Preferences.RedisKey,
	}, logger)

	renderer := api.NewRenderer(logger)

	// Initialize widget
	widget, err := services.NewWidget(context.Background(), cfg.Widget, services.Dependencies{
		Renderer:    renderer,
		Locations:   resolver,
		Fetcher:     forecasts,
		Preferences: prefs,
		Metrics:     services.NewMetrics(prometheus.DefaultRegisterer),
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("Failed to initialize widget", zap.Error(err))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JSONEncoder:  json.Marshal,
		ErrorHandler: errorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(widget, renderer, logger)
	api.SetupRoutes(app, handler, prometheus.DefaultGatherer, logger)

	// First refresh; failures are already rendered as the error view
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := widget.Start(startCtx); err != nil {
		logger.Warn("Initial refresh failed", zap.Error(err))
	}
	cancelStart()

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	widget.Destroy()
	if closer, ok := prefs.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("Failed to close preference storage", zap.Error(err))
		}
	}

	// Shutdown Fiber app
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// newLogger builds a production logger whose level can be changed once
// configuration is loaded.
func newLogger() (*zap.Logger, zap.AtomicLevel) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger, cfg.Level
}

// newGeolocator returns nil when geolocation is disabled, which the resolver
// treats as an absent capability.
func newGeolocator(cfg *config.Config, logger *zap.Logger) services.Geolocator {
	switch cfg.Location.Provider {
	case "static":
		return client.StaticGeolocator{Position: models.Coordinates{
			Latitude:  cfg.Location.Latitude,
			Longitude: cfg.Location.Longitude,
		}}
	case "ip":
		return client.NewIPGeolocator(cfg.WeatherAPI.IPGeolocationURL, logger)
	default:
		return nil
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
