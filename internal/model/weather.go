package model

// Weather mirrors the subset of the Open-Meteo forecast response the
// assistant uses.
type Weather struct {
	Timezone     string            `json:"timezone,omitempty"`
	Current      *CurrentWeather   `json:"current,omitempty"`
	CurrentUnits map[string]string `json:"current_units,omitempty"`
	Daily        *DailyForecast    `json:"daily,omitempty"`
	DailyUnits   map[string]string `json:"daily_units,omitempty"`
}

// Empty reports whether the payload carries neither current conditions nor
// a forecast.
func (w *Weather) Empty() bool {
	return w == nil || (w.Current == nil && (w.Daily == nil || len(w.Daily.Time) == 0))
}

// CurrentWeather holds current conditions.
type CurrentWeather struct {
	Time          string   `json:"time,omitempty"`
	Temperature   *float64 `json:"temperature_2m,omitempty"`
	Precipitation float64  `json:"precipitation"`
}

// DailyForecast holds parallel per-day arrays.
type DailyForecast struct {
	Time               []string  `json:"time"`
	TemperatureMax     []float64 `json:"temperature_2m_max,omitempty"`
	TemperatureMin     []float64 `json:"temperature_2m_min,omitempty"`
	Sunrise            []string  `json:"sunrise,omitempty"`
	Sunset             []string  `json:"sunset,omitempty"`
	PrecipitationHours []float64 `json:"precipitation_hours,omitempty"`
}
