package models

import (
	"fmt"
	"math"
	"time"
)

type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

func ParseUnits(s string) (Units, error) {
	switch Units(s) {
	case UnitsMetric, UnitsImperial:
		return Units(s), nil
	}
	return "", fmt.Errorf("unknown unit system %q", s)
}

// Toggle returns the other unit system.
func (u Units) Toggle() Units {
	if u == UnitsImperial {
		return UnitsMetric
	}
	return UnitsImperial
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key rounds both axes to 4 decimals (~11m), so nearby readings share a key.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f,%.4f", roundKey(c.Latitude), roundKey(c.Longitude))
}

// roundKey also folds negative zero into zero.
func roundKey(v float64) float64 {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		return 0
	}
	return r
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.2f, %.2f", c.Latitude, c.Longitude)
}

type LocationInfo struct {
	Coordinates Coordinates `json:"coordinates"`
	DisplayName string      `json:"display_name,omitempty"`
	Fallback    bool        `json:"fallback"`
}

type CurrentConditions struct {
	Time                time.Time `json:"time"`
	Temperature         float64   `json:"temperature"`
	Humidity            float64   `json:"humidity"`
	WindSpeed           float64   `json:"wind_speed"`
	WeatherCode         int       `json:"weather_code"`
	ApparentTemperature float64   `json:"apparent_temperature"`
	Precipitation       float64   `json:"precipitation"`
	UVIndex             float64   `json:"uv_index"`
}

type HourlySample struct {
	Time                     time.Time `json:"time"`
	Temperature              float64   `json:"temperature"`
	WeatherCode              int       `json:"weather_code"`
	PrecipitationProbability float64   `json:"precipitation_probability"`
}

type DailySample struct {
	Date             time.Time `json:"date"`
	MaxTemp          float64   `json:"max_temp"`
	MinTemp          float64   `json:"min_temp"`
	WeatherCode      int       `json:"weather_code"`
	PrecipitationSum float64   `json:"precipitation_sum"`
	UVIndexMax       float64   `json:"uv_index_max"`
	WindSpeedMax     float64   `json:"wind_speed_max"`
}

// ForecastPayload is one immutable snapshot from the forecast service.
// Temperatures are Celsius, wind speeds km/h, precipitation mm.
type ForecastPayload struct {
	Coordinates Coordinates       `json:"coordinates"`
	Timezone    string            `json:"timezone"`
	Current     CurrentConditions `json:"current"`
	Hourly      []HourlySample    `json:"hourly"`
	Daily       []DailySample     `json:"daily"`
}

type CacheEntry struct {
	Key       string
	Payload   *ForecastPayload
	FetchedAt time.Time
}

const (
	MinForecastDays = 3
	MaxForecastDays = 7
)

type WidgetConfig struct {
	RefreshInterval time.Duration `json:"refresh_interval"`
	Units           Units         `json:"units"`
	ShowForecast    bool          `json:"show_forecast"`
	ShowHourly      bool          `json:"show_hourly"`
	ForecastDays    int           `json:"forecast_days"`
	CacheTimeout    time.Duration `json:"cache_timeout"`
}

// ClampForecastDays keeps n inside the supported forecast range.
func ClampForecastDays(n int) int {
	if n < MinForecastDays {
		return MinForecastDays
	}
	if n > MaxForecastDays {
		return MaxForecastDays
	}
	return n
}

// PositionOptions tunes a single geolocation request.
type PositionOptions struct {
	Timeout      time.Duration
	HighAccuracy bool
	MaxAge       time.Duration
}
