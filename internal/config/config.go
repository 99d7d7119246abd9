package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	Widget models.WidgetConfig

	WeatherAPI struct {
		OpenMeteoURL     string
		GeocodeURL       string
		IPGeolocationURL string
		GeocodeTimeout   time.Duration
		GeocodeCacheTTL  time.Duration
		GeocodeRateLimit float64
		RequestTimeout   time.Duration
	}

	Location struct {
		Provider     string
		Latitude     float64
		Longitude    float64
		Timeout      time.Duration
		HighAccuracy bool
		MaxAge       time.Duration
		FallbackLat  float64
		FallbackLon  float64
		FallbackName string
	}

	Preferences struct {
		Backend  string
		Path     string
		RedisURL string
		RedisKey string
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries int
		Delay      time.Duration
		Multiplier float64
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Widget configuration
	cfg.Widget.RefreshInterval = parseDuration(getEnv("REFRESH_INTERVAL", "10m"))
	cfg.Widget.Units = models.Units(getEnv("UNITS", string(models.UnitsMetric)))
	cfg.Widget.ShowForecast = parseBool(getEnv("SHOW_FORECAST", "true"))
	cfg.Widget.ShowHourly = parseBool(getEnv("SHOW_HOURLY", "true"))
	cfg.Widget.ForecastDays = parseInt(getEnv("FORECAST_DAYS", "5"))
	cfg.Widget.CacheTimeout = parseDuration(getEnv("CACHE_TIMEOUT", "5m"))

	// Weather API configuration
	cfg.WeatherAPI.OpenMeteoURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.WeatherAPI.GeocodeURL = getEnv("GEOCODE_URL", "https://api.bigdatacloud.net/data")
	cfg.WeatherAPI.IPGeolocationURL = getEnv("IP_GEOLOCATION_URL", "http://ip-api.com")
	cfg.WeatherAPI.GeocodeTimeout = parseDuration(getEnv("GEOCODE_TIMEOUT", "5s"))
	cfg.WeatherAPI.GeocodeCacheTTL = parseDuration(getEnv("GEOCODE_CACHE_TTL", "1h"))
	cfg.WeatherAPI.GeocodeRateLimit = parseFloat(getEnv("GEOCODE_RATE_LIMIT", "1"))
	cfg.WeatherAPI.RequestTimeout = parseDuration(getEnv("REQUEST_TIMEOUT", "10s"))

	// Location configuration
	cfg.Location.Provider = getEnv("GEOLOCATION_PROVIDER", "ip")
	cfg.Location.Latitude = parseFloat(getEnv("WIDGET_LATITUDE", "0"))
	cfg.Location.Longitude = parseFloat(getEnv("WIDGET_LONGITUDE", "0"))
	cfg.Location.Timeout = parseDuration(getEnv("GEOLOCATION_TIMEOUT", "10s"))
	cfg.Location.HighAccuracy = parseBool(getEnv("GEOLOCATION_HIGH_ACCURACY", "false"))
	cfg.Location.MaxAge = parseDuration(getEnv("GEOLOCATION_MAX_AGE", "5m"))
	cfg.Location.FallbackLat = parseFloat(getEnv("FALLBACK_LATITUDE", "40.7128"))
	cfg.Location.FallbackLon = parseFloat(getEnv("FALLBACK_LONGITUDE", "-74.0060"))
	cfg.Location.FallbackName = getEnv("FALLBACK_NAME", "New York, NY")

	// Preference storage
	cfg.Preferences.Backend = getEnv("PREFERENCES_BACKEND", "file")
	cfg.Preferences.Path = getEnv("PREFERENCES_PATH", defaultPreferencesPath())
	cfg.Preferences.RedisURL = getEnv("PREFERENCES_REDIS_URL", "redis://localhost:6379/0")
	cfg.Preferences.RedisKey = getEnv("PREFERENCES_REDIS_KEY", "weather-widget:units")

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Retry configuration
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "2"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := models.ParseUnits(string(c.Widget.Units)); err != nil {
		return fmt.Errorf("invalid UNITS: %w", err)
	}
	if c.Widget.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}
	if c.Location.Timeout > 15*time.Second {
		zap.L().Warn("Geolocation timeout capped at 15s", zap.Duration("requested", c.Location.Timeout))
		c.Location.Timeout = 15 * time.Second
	}
	if days := models.ClampForecastDays(c.Widget.ForecastDays); days != c.Widget.ForecastDays {
		zap.L().Warn("Forecast days out of range, clamping",
			zap.Int("requested", c.Widget.ForecastDays),
			zap.Int("used", days))
		c.Widget.ForecastDays = days
	}
	switch c.Location.Provider {
	case "ip", "static", "none":
	default:
		return fmt.Errorf("unknown GEOLOCATION_PROVIDER %q", c.Location.Provider)
	}
	return nil
}

func defaultPreferencesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "weather-widget.yaml"
	}
	return dir + string(os.PathSeparator) + "weather-widget" + string(os.PathSeparator) + "preferences.yaml"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}

func parseBool(value string) bool {
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		zap.L().Warn("Failed to parse bool", zap.String("value", value), zap.Error(err))
		return false
	}
	return boolValue
}
