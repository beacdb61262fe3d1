package transcoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/nova/internal/model"
)

const (
	defaultTempUnit = "°F"
	forecastDays    = 3
)

// Weather renders current conditions and up to three forecast days.
func (t *Transcoder) Weather(w *model.Weather) string {
	if w.Empty() {
		return NoWeather
	}

	var lines []string
	unit := unitOr(w.CurrentUnits, "temperature_2m", defaultTempUnit)

	if c := w.Current; c != nil {
		lines = append(lines, "CURRENT WEATHER:")
		if c.Temperature != nil {
			lines = append(lines, fmt.Sprintf("  Temperature: %.0f%s", *c.Temperature, unit))
		}
		if c.Precipitation > 0 {
			lines = append(lines, "  Precipitation: "+strconv.FormatFloat(c.Precipitation, 'f', -1, 64)+"mm")
		} else {
			lines = append(lines, "  Precipitation: None")
		}
		lines = append(lines, "")
	}

	if d := w.Daily; d != nil {
		highUnit := unitOr(w.DailyUnits, "temperature_2m_max", unit)
		lowUnit := unitOr(w.DailyUnits, "temperature_2m_min", unit)

		for i, day := range d.Time {
			if i == forecastDays {
				break
			}

			relative, full := t.label(day)
			if relative != "" {
				lines = append(lines, fmt.Sprintf("%s'S FORECAST (%s):", relative, full))
			} else {
				lines = append(lines, fmt.Sprintf("FORECAST FOR %s:", full))
			}

			if i < len(d.TemperatureMax) && i < len(d.TemperatureMin) {
				lines = append(lines, fmt.Sprintf("  High: %.0f%s, Low: %.0f%s",
					d.TemperatureMax[i], highUnit, d.TemperatureMin[i], lowUnit))
			}
			if i < len(d.Sunrise) && i < len(d.Sunset) {
				lines = append(lines, fmt.Sprintf("  Sunrise: %s, Sunset: %s",
					t.FormatTime(d.Sunrise[i]), t.FormatTime(d.Sunset[i])))
			}
			lines = append(lines, "")
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func unitOr(units map[string]string, key, fallback string) string {
	if u, ok := units[key]; ok && u != "" {
		return u
	}
	return fallback
}
