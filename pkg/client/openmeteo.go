package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"go.uber.org/zap"
)

const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1"

const (
	currentFields = "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code,apparent_temperature,precipitation,uv_index"
	hourlyFields  = "temperature_2m,weather_code,precipitation_probability"
	dailyFields   = "temperature_2m_max,temperature_2m_min,weather_code,precipitation_sum,uv_index_max,wind_speed_10m_max"
	hourlyWindow  = 24

	localTimeLayout = "2006-01-02T15:04"
	dateLayout      = "2006-01-02"
)

type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

type OpenMeteoForecastResponse struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	Timezone             string  `json:"timezone"`
	TimezoneAbbreviation string  `json:"timezone_abbreviation"`
	UTCOffsetSeconds     int     `json:"utc_offset_seconds"`
	Current              struct {
		Time                string  `json:"time"`
		Temperature2M       float64 `json:"temperature_2m"`
		RelativeHumidity2M  float64 `json:"relative_humidity_2m"`
		WindSpeed10M        float64 `json:"wind_speed_10m"`
		WeatherCode         int     `json:"weather_code"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Precipitation       float64 `json:"precipitation"`
		UVIndex             float64 `json:"uv_index"`
	} `json:"current"`
	Hourly struct {
		Time                     []string  `json:"time"`
		Temperature2M            []float64 `json:"temperature_2m"`
		WeatherCode              []int     `json:"weather_code"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
	} `json:"hourly"`
	Daily struct {
		Time             []string  `json:"time"`
		Temperature2MMax []float64 `json:"temperature_2m_max"`
		Temperature2MMin []float64 `json:"temperature_2m_min"`
		WeatherCode      []int     `json:"weather_code"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		UVIndexMax       []float64 `json:"uv_index_max"`
		WindSpeed10MMax  []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	return newOpenMeteoClient(baseURL, NewBaseClient("openmeteo", config, logger))
}

func newOpenMeteoClient(baseURL string, base *BaseClient) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoClient{
		BaseClient: base,
		baseURL:    baseURL,
	}
}

// ForecastURL builds the request for current conditions, the next 24 hourly
// samples and `days` daily aggregates, with the timezone picked by the service.
func (c *OpenMeteoClient) ForecastURL(coords models.Coordinates, days int) string {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("current", currentFields)
	params.Set("hourly", hourlyFields)
	params.Set("forecast_hours", strconv.Itoa(hourlyWindow))
	params.Set("daily", dailyFields)
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(days))

	return fmt.Sprintf("%s/forecast?%s", c.baseURL, params.Encode())
}

func (c *OpenMeteoClient) GetForecast(ctx context.Context, coords models.Coordinates, days int) (*models.ForecastPayload, error) {
	data, err := c.GetWithRetry(ctx, c.ForecastURL(coords, days))
	if err != nil {
		return nil, err
	}

	var response OpenMeteoForecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, &ParseError{Err: err}
	}

	payload, err := response.toPayload(coords)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	c.logger.Debug("Forecast fetched",
		zap.String("coordinates", coords.Key()),
		zap.String("timezone", payload.Timezone),
		zap.Int("hourly", len(payload.Hourly)),
		zap.Int("daily", len(payload.Daily)))

	return payload, nil
}

func (r *OpenMeteoForecastResponse) toPayload(coords models.Coordinates) (*models.ForecastPayload, error) {
	loc := time.FixedZone(r.TimezoneAbbreviation, r.UTCOffsetSeconds)

	currentTime, err := time.ParseInLocation(localTimeLayout, r.Current.Time, loc)
	if err != nil {
		return nil, fmt.Errorf("current time: %w", err)
	}

	payload := &models.ForecastPayload{
		Coordinates: coords,
		Timezone:    r.Timezone,
		Current: models.CurrentConditions{
			Time:                currentTime,
			Temperature:         r.Current.Temperature2M,
			Humidity:            r.Current.RelativeHumidity2M,
			WindSpeed:           r.Current.WindSpeed10M,
			WeatherCode:         r.Current.WeatherCode,
			ApparentTemperature: r.Current.ApparentTemperature,
			Precipitation:       r.Current.Precipitation,
			UVIndex:             r.Current.UVIndex,
		},
	}

	h := r.Hourly
	n := len(h.Time)
	if len(h.Temperature2M) != n || len(h.WeatherCode) != n || len(h.PrecipitationProbability) != n {
		return nil, fmt.Errorf("hourly arrays have mismatched lengths")
	}
	payload.Hourly = make([]models.HourlySample, 0, n)
	for i := 0; i < n; i++ {
		t, err := time.ParseInLocation(localTimeLayout, h.Time[i], loc)
		if err != nil {
			return nil, fmt.Errorf("hourly time %d: %w", i, err)
		}
		payload.Hourly = append(payload.Hourly, models.HourlySample{
			Time:                     t,
			Temperature:              h.Temperature2M[i],
			WeatherCode:              h.WeatherCode[i],
			PrecipitationProbability: h.PrecipitationProbability[i],
		})
	}

	d := r.Daily
	n = len(d.Time)
	if len(d.Temperature2MMax) != n || len(d.Temperature2MMin) != n || len(d.WeatherCode) != n ||
		len(d.PrecipitationSum) != n || len(d.UVIndexMax) != n || len(d.WindSpeed10MMax) != n {
		return nil, fmt.Errorf("daily arrays have mismatched lengths")
	}
	payload.Daily = make([]models.DailySample, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.ParseInLocation(dateLayout, d.Time[i], loc)
		if err != nil {
			return nil, fmt.Errorf("daily time %d: %w", i, err)
		}
		payload.Daily = append(payload.Daily, models.DailySample{
			Date:             date,
			MaxTemp:          d.Temperature2MMax[i],
			MinTemp:          d.Temperature2MMin[i],
			WeatherCode:      d.WeatherCode[i],
			PrecipitationSum: d.PrecipitationSum[i],
			UVIndexMax:       d.UVIndexMax[i],
			WindSpeedMax:     d.WindSpeed10MMax[i],
		})
	}

	return payload, nil
}
