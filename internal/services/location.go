package services

import (
	"context"
	"strings"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/pkg/client"
	"go.uber.org/zap"
)

// Geolocator reports the device position. A nil Geolocator means the
// capability is absent.
type Geolocator interface {
	CurrentPosition(ctx context.Context, opts models.PositionOptions) (models.Coordinates, error)
}

type Geocoder interface {
	Reverse(ctx context.Context, coords models.Coordinates) (client.Place, error)
}

type LocationConfig struct {
	Position       models.PositionOptions
	GeocodeTimeout time.Duration
	Fallback       models.LocationInfo
}

// DefaultFallback is used when no position can be obtained.
var DefaultFallback = models.LocationInfo{
	Coordinates: models.Coordinates{Latitude: 40.7128, Longitude: -74.0060},
	DisplayName: "New York, NY",
	Fallback:    true,
}

type LocationResolver struct {
	geolocator Geolocator
	geocoder   Geocoder
	config     LocationConfig
	logger     *zap.Logger
}

func NewLocationResolver(geolocator Geolocator, geocoder Geocoder, config LocationConfig, logger *zap.Logger) *LocationResolver {
	if config.Fallback.DisplayName == "" {
		config.Fallback = DefaultFallback
	}
	config.Fallback.Fallback = true

	return &LocationResolver{
		geolocator: geolocator,
		geocoder:   geocoder,
		config:     config,
		logger:     logger,
	}
}

// Resolve always yields a usable location. Geolocation and geocoding
// failures are logged and absorbed.
func (r *LocationResolver) Resolve(ctx context.Context) models.LocationInfo {
	if r.geolocator == nil {
		r.logger.Warn("Geolocation unavailable, using default location",
			zap.String("location", r.config.Fallback.DisplayName))
		return r.config.Fallback
	}

	posCtx := ctx
	if r.config.Position.Timeout > 0 {
		var cancel context.CancelFunc
		posCtx, cancel = context.WithTimeout(ctx, r.config.Position.Timeout)
		defer cancel()
	}

	coords, err := r.geolocator.CurrentPosition(posCtx, r.config.Position)
	if err != nil {
		r.logger.Warn("Geolocation failed, using default location",
			zap.String("location", r.config.Fallback.DisplayName),
			zap.Error(err))
		return r.config.Fallback
	}

	return models.LocationInfo{
		Coordinates: coords,
		DisplayName: r.displayName(ctx, coords),
	}
}

func (r *LocationResolver) displayName(ctx context.Context, coords models.Coordinates) string {
	if r.geocoder == nil {
		return coords.String()
	}

	if r.config.GeocodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.GeocodeTimeout)
		defer cancel()
	}

	place, err := r.geocoder.Reverse(ctx, coords)
	if err != nil {
		r.logger.Warn("Reverse geocoding failed, using coordinates",
			zap.String("coordinates", coords.Key()),
			zap.Error(err))
		return coords.String()
	}

	parts := make([]string, 0, 2)
	if place.City != "" {
		parts = append(parts, place.City)
	}
	if place.CountryCode != "" {
		parts = append(parts, strings.ToUpper(place.CountryCode))
	}
	if len(parts) == 0 {
		return coords.String()
	}
	return strings.Join(parts, ", ")
}
