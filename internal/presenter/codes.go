package presenter

// Condition is the display form of a WMO weather interpretation code.
type Condition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

var Unknown = Condition{Icon: "🌤️", Description: "Unknown"}

var weatherCodes = map[int]Condition{
	0:  {"☀️", "Clear sky"},
	1:  {"🌤️", "Mainly clear"},
	2:  {"⛅", "Partly cloudy"},
	3:  {"☁️", "Overcast"},
	45: {"🌫️", "Fog"},
	48: {"🌫️", "Depositing rime fog"},
	51: {"🌦️", "Light drizzle"},
	53: {"🌦️", "Moderate drizzle"},
	55: {"🌦️", "Dense drizzle"},
	56: {"🌧️", "Light freezing drizzle"},
	57: {"🌧️", "Dense freezing drizzle"},
	61: {"🌧️", "Slight rain"},
	63: {"🌧️", "Moderate rain"},
	65: {"🌧️", "Heavy rain"},
	66: {"🌧️", "Light freezing rain"},
	67: {"🌧️", "Heavy freezing rain"},
	71: {"❄️", "Slight snow"},
	73: {"❄️", "Moderate snow"},
	75: {"❄️", "Heavy snow"},
	77: {"❄️", "Snow grains"},
	80: {"🌦️", "Slight rain showers"},
	81: {"🌦️", "Moderate rain showers"},
	82: {"🌦️", "Violent rain showers"},
	85: {"🌨️", "Slight snow showers"},
	86: {"🌨️", "Heavy snow showers"},
	95: {"⛈️", "Thunderstorm"},
	96: {"⛈️", "Thunderstorm with hail"},
	99: {"⛈️", "Thunderstorm with heavy hail"},
}

// Lookup maps a weather code to its condition, or Unknown.
func Lookup(code int) Condition {
	if c, ok := weatherCodes[code]; ok {
		return c
	}
	return Unknown
}

// KnownCodes lists every code with a dedicated condition.
func KnownCodes() []int {
	codes := make([]int, 0, len(weatherCodes))
	for code := range weatherCodes {
		codes = append(codes, code)
	}
	return codes
}
