package presenter

import (
	"fmt"

	"github.com/bobby-s-dev/weather-widget/internal/models"
)

type AlertKind string

const (
	AlertUV   AlertKind = "uv"
	AlertWind AlertKind = "wind"
	AlertRain AlertKind = "rain"
)

// Thresholds are exclusive: a reading must exceed them to raise an alert.
const (
	UVThreshold            = 7.0
	WindThresholdKmh       = 40.0
	PrecipitationThreshold = 10.0
)

type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// DeriveAlerts returns one alert per exceeded threshold, in UV, wind, rain
// order. It returns nil when no threshold is exceeded.
func DeriveAlerts(uvIndex, windKmh, precipitationMm float64, units models.Units) []Alert {
	var alerts []Alert
	if uvIndex > UVThreshold {
		alerts = append(alerts, Alert{
			Kind:    AlertUV,
			Message: fmt.Sprintf("High UV index (%.0f): protect your skin", uvIndex),
		})
	}
	if windKmh > WindThresholdKmh {
		alerts = append(alerts, Alert{
			Kind:    AlertWind,
			Message: fmt.Sprintf("Strong wind: %d %s", FormatWindSpeed(windKmh, units), WindSpeedUnit(units)),
		})
	}
	if precipitationMm > PrecipitationThreshold {
		alerts = append(alerts, Alert{
			Kind:    AlertRain,
			Message: fmt.Sprintf("Heavy rain: %.1f mm expected", precipitationMm),
		})
	}
	return alerts
}
