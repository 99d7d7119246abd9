package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultIPGeolocationURL = "http://ip-api.com"

var ErrPositionUnavailable = errors.New("position unavailable")

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// IPGeolocator estimates the host position from its public IP address.
// Accuracy is always city-level, so HighAccuracy is ignored.
type IPGeolocator struct {
	client *resty.Client
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	last     models.Coordinates
	lastTime time.Time
}

func NewIPGeolocator(baseURL string, logger *zap.Logger) *IPGeolocator {
	if baseURL == "" {
		baseURL = DefaultIPGeolocationURL
	}
	return &IPGeolocator{
		client: resty.New().SetBaseURL(baseURL),
		logger: logger,
		now:    time.Now,
	}
}

func (g *IPGeolocator) CurrentPosition(ctx context.Context, opts models.PositionOptions) (models.Coordinates, error) {
	g.mu.Lock()
	if opts.MaxAge > 0 && !g.lastTime.IsZero() && g.now().Sub(g.lastTime) < opts.MaxAge {
		pos := g.last
		g.mu.Unlock()
		return pos, nil
	}
	g.mu.Unlock()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var out ipLookupResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("fields", "status,message,lat,lon").
		SetResult(&out).
		Get("/json/")
	if err != nil {
		return models.Coordinates{}, &NetworkError{URL: g.client.BaseURL, Err: err}
	}
	if resp.IsError() {
		return models.Coordinates{}, &FetchError{URL: resp.Request.URL, StatusCode: resp.StatusCode()}
	}
	if out.Status != "success" {
		return models.Coordinates{}, fmt.Errorf("%w: %s", ErrPositionUnavailable, out.Message)
	}

	pos := models.Coordinates{Latitude: out.Lat, Longitude: out.Lon}

	g.mu.Lock()
	g.last = pos
	g.lastTime = g.now()
	g.mu.Unlock()

	g.logger.Debug("IP geolocation resolved", zap.String("coordinates", pos.Key()))
	return pos, nil
}

// StaticGeolocator always reports the configured position.
type StaticGeolocator struct {
	Position models.Coordinates
}

func (g StaticGeolocator) CurrentPosition(ctx context.Context, _ models.PositionOptions) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}
	return g.Position, nil
}
