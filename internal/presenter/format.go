package presenter

import (
	"math"

	"github.com/bobby-s-dev/weather-widget/internal/models"
)

const kmhToMph = 0.621371

// round halves toward positive infinity, so -2.5 becomes -2.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// FormatTemperature converts a Celsius reading to the display unit.
func FormatTemperature(celsius float64, units models.Units) int {
	if units == models.UnitsImperial {
		return round(celsius*9/5 + 32)
	}
	return round(celsius)
}

// FormatWindSpeed converts a km/h reading to the display unit.
func FormatWindSpeed(kmh float64, units models.Units) int {
	if units == models.UnitsImperial {
		return round(kmh * kmhToMph)
	}
	return round(kmh)
}

func TemperatureUnit(units models.Units) string {
	if units == models.UnitsImperial {
		return "°F"
	}
	return "°C"
}

func WindSpeedUnit(units models.Units) string {
	if units == models.UnitsImperial {
		return "mph"
	}
	return "km/h"
}
