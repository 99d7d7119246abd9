package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultGeocodeURL = "https://api.bigdatacloud.net/data"

// Place is the subset of a reverse-geocoding answer the widget displays.
type Place struct {
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}

type GeocoderConfig struct {
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	RateLimit float64
	Burst     int
}

type ReverseGeocoder struct {
	client  *resty.Client
	limiter *rate.Limiter
	places  *cache.Cache
	logger  *zap.Logger
}

func NewReverseGeocoder(config GeocoderConfig, logger *zap.Logger) *ReverseGeocoder {
	if config.BaseURL == "" {
		config.BaseURL = DefaultGeocodeURL
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = time.Hour
	}
	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json")

	return &ReverseGeocoder{
		client:  client,
		limiter: rate.NewLimiter(limit, config.Burst),
		places:  cache.New(config.CacheTTL, 2*config.CacheTTL),
		logger:  logger,
	}
}

// Reverse resolves coordinates to a place. Results are cached per rounded
// coordinate key; failures are not cached.
func (g *ReverseGeocoder) Reverse(ctx context.Context, coords models.Coordinates) (Place, error) {
	key := coords.Key()
	if cached, found := g.places.Get(key); found {
		return cached.(Place), nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return Place{}, fmt.Errorf("geocode rate limit wait canceled: %w", err)
	}

	var place Place
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":         strconv.FormatFloat(coords.Latitude, 'f', -1, 64),
			"longitude":        strconv.FormatFloat(coords.Longitude, 'f', -1, 64),
			"localityLanguage": "en",
		}).
		SetResult(&place).
		Get("/reverse-geocode-client")
	if err != nil {
		return Place{}, &NetworkError{URL: g.client.BaseURL, Err: err}
	}
	if resp.IsError() {
		return Place{}, &FetchError{URL: resp.Request.URL, StatusCode: resp.StatusCode()}
	}
	if place.City == "" && place.CountryCode == "" {
		return Place{}, fmt.Errorf("no place found for %s", key)
	}

	g.places.Set(key, place, cache.DefaultExpiration)
	g.logger.Debug("Reverse geocoded",
		zap.String("coordinates", key),
		zap.String("city", place.City),
		zap.String("country_code", place.CountryCode))

	return place, nil
}
