// Package presenter shapes a forecast payload into the unit-converted,
// human-readable model handed to a renderer. Nothing here performs I/O.
package presenter

import (
	"sort"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
)

const hourlyRows = 24

type CurrentView struct {
	Condition
	Temperature         int     `json:"temperature"`
	ApparentTemperature int     `json:"apparent_temperature"`
	Humidity            int     `json:"humidity"`
	WindSpeed           int     `json:"wind_speed"`
	Precipitation       float64 `json:"precipitation"`
	UVIndex             float64 `json:"uv_index"`
}

type HourlyRow struct {
	Condition
	Time                     time.Time `json:"time"`
	Temperature              int       `json:"temperature"`
	PrecipitationProbability int       `json:"precipitation_probability"`
}

type DailyRow struct {
	Condition
	Date             time.Time `json:"date"`
	MaxTemp          int       `json:"max_temp"`
	MinTemp          int       `json:"min_temp"`
	PrecipitationSum float64   `json:"precipitation_sum"`
	UVIndexMax       float64   `json:"uv_index_max"`
	WindSpeedMax     int       `json:"wind_speed_max"`
}

type DisplayModel struct {
	Location        string             `json:"location"`
	Coordinates     models.Coordinates `json:"coordinates"`
	Units           models.Units       `json:"units"`
	TemperatureUnit string             `json:"temperature_unit"`
	WindSpeedUnit   string             `json:"wind_speed_unit"`
	ObservedAt      time.Time          `json:"observed_at"`
	Current         CurrentView        `json:"current"`
	Alerts          []Alert            `json:"alerts,omitempty"`
	Hourly          []HourlyRow        `json:"hourly,omitempty"`
	Daily           []DailyRow         `json:"daily,omitempty"`
}

// Present converts payload for display under cfg. The hourly table starts at
// the hour containing now; a zero now means the payload's observation time.
func Present(payload *models.ForecastPayload, cfg models.WidgetConfig, location models.LocationInfo, now time.Time) DisplayModel {
	units := cfg.Units
	if units == "" {
		units = models.UnitsMetric
	}

	current := payload.Current
	model := DisplayModel{
		Location:        location.DisplayName,
		Coordinates:     location.Coordinates,
		Units:           units,
		TemperatureUnit: TemperatureUnit(units),
		WindSpeedUnit:   WindSpeedUnit(units),
		ObservedAt:      current.Time,
		Current: CurrentView{
			Condition:           Lookup(current.WeatherCode),
			Temperature:         FormatTemperature(current.Temperature, units),
			ApparentTemperature: FormatTemperature(current.ApparentTemperature, units),
			Humidity:            round(current.Humidity),
			WindSpeed:           FormatWindSpeed(current.WindSpeed, units),
			Precipitation:       current.Precipitation,
			UVIndex:             current.UVIndex,
		},
	}
	if model.Location == "" {
		model.Location = location.Coordinates.String()
	}

	model.Alerts = DeriveAlerts(current.UVIndex, current.WindSpeed, rainfall(payload), units)

	if cfg.ShowHourly {
		model.Hourly = hourly(payload, units, now)
	}
	if cfg.ShowForecast {
		model.Daily = daily(payload, models.ClampForecastDays(cfg.ForecastDays), units)
	}

	return model
}

// rainfall prefers today's accumulated total over the current-hour reading.
func rainfall(payload *models.ForecastPayload) float64 {
	if len(payload.Daily) > 0 {
		return payload.Daily[0].PrecipitationSum
	}
	return payload.Current.Precipitation
}

func hourly(payload *models.ForecastPayload, units models.Units, now time.Time) []HourlyRow {
	samples := make([]models.HourlySample, len(payload.Hourly))
	copy(samples, payload.Hourly)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})

	if now.IsZero() {
		now = payload.Current.Time
	} else {
		now = now.In(payload.Current.Time.Location())
	}
	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())

	rows := make([]HourlyRow, 0, hourlyRows)
	for _, s := range samples {
		if s.Time.Before(hourStart) {
			continue
		}
		if len(rows) == hourlyRows {
			break
		}
		rows = append(rows, HourlyRow{
			Condition:                Lookup(s.WeatherCode),
			Time:                     s.Time,
			Temperature:              FormatTemperature(s.Temperature, units),
			PrecipitationProbability: round(s.PrecipitationProbability),
		})
	}
	return rows
}

func daily(payload *models.ForecastPayload, days int, units models.Units) []DailyRow {
	samples := make([]models.DailySample, len(payload.Daily))
	copy(samples, payload.Daily)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Date.Before(samples[j].Date)
	})

	if len(samples) > days {
		samples = samples[:days]
	}

	rows := make([]DailyRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, DailyRow{
			Condition:        Lookup(s.WeatherCode),
			Date:             s.Date,
			MaxTemp:          FormatTemperature(s.MaxTemp, units),
			MinTemp:          FormatTemperature(s.MinTemp, units),
			PrecipitationSum: s.PrecipitationSum,
			UVIndexMax:       s.UVIndexMax,
			WindSpeedMax:     FormatWindSpeed(s.WindSpeedMax, units),
		})
	}
	return rows
}
