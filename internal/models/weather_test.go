package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinatesKey(t *testing.T) {
	tests := []struct {
		name   string
		coords Coordinates
		want   string
	}{
		{"rounds to four decimals", Coordinates{Latitude: 40.71281, Longitude: -74.00604}, "40.7128,-74.0060"},
		{"south of the equator", Coordinates{Latitude: -0.00001, Longitude: 10}, "0.0000,10.0000"},
		{"west of the meridian", Coordinates{Latitude: 51.4779, Longitude: -0.00002}, "51.4779,0.0000"},
		{"negative zero", Coordinates{Latitude: math.Copysign(0, -1), Longitude: 0}, "0.0000,0.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coords.Key())
		})
	}
}

func TestParseUnitsAndToggle(t *testing.T) {
	u, err := ParseUnits("imperial")
	assert.NoError(t, err)
	assert.Equal(t, UnitsMetric, u.Toggle())

	_, err = ParseUnits("kelvin")
	assert.Error(t, err)
}

func TestClampForecastDays(t *testing.T) {
	assert.Equal(t, MinForecastDays, ClampForecastDays(0))
	assert.Equal(t, 5, ClampForecastDays(5))
	assert.Equal(t, MaxForecastDays, ClampForecastDays(30))
}
