package presenter

import (
	"math"
	"testing"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTemperature(t *testing.T) {
	for _, c := range []float64{-40, -17.8, -2.5, 0, 0.4, 12.5, 21.3, 37, 48.9} {
		assert.Equal(t, int(math.Floor(c*9/5+32+0.5)), FormatTemperature(c, models.UnitsImperial), "imperial %v", c)
		assert.Equal(t, int(math.Floor(c+0.5)), FormatTemperature(c, models.UnitsMetric), "metric %v", c)
	}

	assert.Equal(t, 32, FormatTemperature(0, models.UnitsImperial))
	assert.Equal(t, 212, FormatTemperature(100, models.UnitsImperial))
	assert.Equal(t, -40, FormatTemperature(-40, models.UnitsImperial))
	assert.Equal(t, 13, FormatTemperature(12.5, models.UnitsMetric))
	assert.Equal(t, -2, FormatTemperature(-2.5, models.UnitsMetric))
}

func TestFormatWindSpeed(t *testing.T) {
	for _, s := range []float64{0, 1, 10, 18.2, 40, 41, 100} {
		assert.Equal(t, int(math.Floor(s*0.621371+0.5)), FormatWindSpeed(s, models.UnitsImperial), "imperial %v", s)
		assert.Equal(t, int(math.Floor(s+0.5)), FormatWindSpeed(s, models.UnitsMetric), "metric %v", s)
	}
	assert.Equal(t, 62, FormatWindSpeed(100, models.UnitsImperial))
}

func TestUnitLabels(t *testing.T) {
	assert.Equal(t, "°C", TemperatureUnit(models.UnitsMetric))
	assert.Equal(t, "°F", TemperatureUnit(models.UnitsImperial))
	assert.Equal(t, "km/h", WindSpeedUnit(models.UnitsMetric))
	assert.Equal(t, "mph", WindSpeedUnit(models.UnitsImperial))
}

func TestLookup(t *testing.T) {
	for _, code := range KnownCodes() {
		c := Lookup(code)
		assert.NotEmpty(t, c.Icon, "code %d", code)
		assert.NotEmpty(t, c.Description, "code %d", code)
		assert.NotEqual(t, Unknown.Description, c.Description, "code %d", code)
		assert.Equal(t, c, Lookup(code), "lookup is stable for %d", code)
	}

	assert.Equal(t, Condition{Icon: "☀️", Description: "Clear sky"}, Lookup(0))
	assert.Equal(t, "Thunderstorm with heavy hail", Lookup(99).Description)

	for _, code := range []int{-1, 4, 44, 100, 1000} {
		assert.Equal(t, Unknown, Lookup(code), "code %d", code)
	}
}

func TestDeriveAlerts(t *testing.T) {
	tests := []struct {
		name   string
		uv     float64
		wind   float64
		precip float64
		want   []AlertKind
	}{
		{name: "calm", uv: 3, wind: 10, precip: 0, want: nil},
		{name: "uv above threshold", uv: 8, want: []AlertKind{AlertUV}},
		{name: "uv at threshold", uv: 7},
		{name: "wind above threshold", wind: 41, want: []AlertKind{AlertWind}},
		{name: "wind at threshold", wind: 40},
		{name: "rain above threshold", precip: 11, want: []AlertKind{AlertRain}},
		{name: "rain at threshold", precip: 10},
		{name: "all", uv: 9, wind: 60, precip: 25, want: []AlertKind{AlertUV, AlertWind, AlertRain}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := DeriveAlerts(tt.uv, tt.wind, tt.precip, models.UnitsMetric)
			var kinds []AlertKind
			for _, a := range alerts {
				assert.NotEmpty(t, a.Message)
				kinds = append(kinds, a.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestDeriveAlertsWindMessageUsesUnits(t *testing.T) {
	alerts := DeriveAlerts(0, 50, 0, models.UnitsImperial)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Strong wind: 31 mph", alerts[0].Message)
}

func samplePayload(hours, days int) *models.ForecastPayload {
	loc := time.FixedZone("EDT", -4*3600)
	now := time.Date(2026, 10, 17, 9, 40, 0, 0, loc)

	p := &models.ForecastPayload{
		Coordinates: models.Coordinates{Latitude: 40.7128, Longitude: -74.006},
		Current: models.CurrentConditions{
			Time:                now,
			Temperature:         20,
			Humidity:            64.6,
			WindSpeed:           18,
			WeatherCode:         2,
			ApparentTemperature: 19.4,
			Precipitation:       0,
			UVIndex:             3,
		},
	}

	// Two samples before the current hour, then one per hour.
	start := time.Date(2026, 10, 17, 7, 0, 0, 0, loc)
	for i := 0; i < hours; i++ {
		p.Hourly = append(p.Hourly, models.HourlySample{
			Time:                     start.Add(time.Duration(i) * time.Hour),
			Temperature:              float64(10 + i),
			WeatherCode:              61,
			PrecipitationProbability: 40,
		})
	}
	for i := 0; i < days; i++ {
		p.Daily = append(p.Daily, models.DailySample{
			Date:             time.Date(2026, 10, 17+i, 0, 0, 0, 0, loc),
			MaxTemp:          22,
			MinTemp:          11,
			WeatherCode:      0,
			PrecipitationSum: 1.5,
			UVIndexMax:       4,
			WindSpeedMax:     30,
		})
	}
	return p
}

func TestPresent(t *testing.T) {
	payload := samplePayload(30, 7)
	cfg := models.WidgetConfig{Units: models.UnitsImperial, ShowForecast: true, ShowHourly: true, ForecastDays: 5}
	loc := models.LocationInfo{Coordinates: payload.Coordinates, DisplayName: "New York, US"}

	model := Present(payload, cfg, loc, time.Time{})

	assert.Equal(t, "New York, US", model.Location)
	assert.Equal(t, "°F", model.TemperatureUnit)
	assert.Equal(t, "mph", model.WindSpeedUnit)
	assert.Equal(t, 68, model.Current.Temperature)
	assert.Equal(t, 67, model.Current.ApparentTemperature)
	assert.Equal(t, 65, model.Current.Humidity)
	assert.Equal(t, 11, model.Current.WindSpeed)
	assert.Equal(t, "Partly cloudy", model.Current.Description)
	assert.Empty(t, model.Alerts)

	require.Len(t, model.Hourly, 24)
	assert.Equal(t, 9, model.Hourly[0].Time.Hour(), "hourly table starts at the current hour")
	for i := 1; i < len(model.Hourly); i++ {
		assert.True(t, model.Hourly[i-1].Time.Before(model.Hourly[i].Time))
	}
	assert.Equal(t, FormatTemperature(12, models.UnitsImperial), model.Hourly[0].Temperature)

	require.Len(t, model.Daily, 5)
	assert.Equal(t, 17, model.Daily[0].Date.Day())
	assert.Equal(t, 21, model.Daily[4].Date.Day())
	assert.Equal(t, 72, model.Daily[0].MaxTemp)
	assert.Equal(t, 19, model.Daily[0].WindSpeedMax)
}

func TestPresentTogglesSections(t *testing.T) {
	payload := samplePayload(30, 7)
	model := Present(payload, models.WidgetConfig{Units: models.UnitsMetric, ForecastDays: 3}, models.LocationInfo{Coordinates: payload.Coordinates}, time.Time{})

	assert.Nil(t, model.Hourly)
	assert.Nil(t, model.Daily)
	assert.Equal(t, "40.71, -74.01", model.Location, "missing display name falls back to coordinates")
	assert.Equal(t, 20, model.Current.Temperature)
}

func TestPresentShortSeries(t *testing.T) {
	payload := samplePayload(10, 3)
	model := Present(payload, models.WidgetConfig{ShowForecast: true, ShowHourly: true, ForecastDays: 7}, models.LocationInfo{}, time.Time{})

	assert.Equal(t, models.UnitsMetric, model.Units)
	assert.Len(t, model.Hourly, 8)
	assert.Len(t, model.Daily, 3)
}

func TestPresentRainAlertUsesDailyTotal(t *testing.T) {
	payload := samplePayload(24, 3)
	payload.Daily[0].PrecipitationSum = 12
	payload.Current.UVIndex = 8

	model := Present(payload, models.WidgetConfig{Units: models.UnitsMetric, ForecastDays: 3}, models.LocationInfo{}, time.Time{})
	require.Len(t, model.Alerts, 2)
	assert.Equal(t, AlertUV, model.Alerts[0].Kind)
	assert.Equal(t, AlertRain, model.Alerts[1].Kind)
}

func TestPresentHourlyFollowsClock(t *testing.T) {
	payload := samplePayload(30, 3)
	cfg := models.WidgetConfig{ShowHourly: true, ForecastDays: 3}

	later := payload.Current.Time.Add(2 * time.Hour).UTC()
	model := Present(payload, cfg, models.LocationInfo{}, later)

	require.NotEmpty(t, model.Hourly)
	assert.Equal(t, 11, model.Hourly[0].Time.Hour(), "re-present later starts at the later hour")
	assert.Len(t, model.Hourly, 24)

	model = Present(payload, cfg, models.LocationInfo{}, payload.Current.Time.Add(30*time.Hour))
	assert.Empty(t, model.Hourly)
}
