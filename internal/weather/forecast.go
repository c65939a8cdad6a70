package weather

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/krishisakhi/backend/internal/domain"
)

// ForecastDays is the length of a generated forecast.
const ForecastDays = 5

// Typical Kerala conditions the generator varies around.
const (
	baseTemp     = 28.0
	baseHumidity = 75.0
)

// Generate builds a mocked forecast for location starting at day. The result
// depends only on the lower-cased location and the calendar date.
func Generate(location string, day time.Time) *domain.Forecast {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(seed(location, start)))

	days := make([]domain.DayForecast, 0, ForecastDays)
	for i := 0; i < ForecastDays; i++ {
		date := start.AddDate(0, 0, i)

		tempVariation := uniform(rng, -3, 5)
		humidityVariation := uniform(rng, -10, 15)
		rainChance := uniform(rng, 0, 100)
		wind := uniform(rng, 5, 15)

		rainfall := 0.0
		if rainChance > 60 {
			rainfall = round1(rainChance / 10)
		}

		days = append(days, domain.DayForecast{
			Date: date.Format(domain.DateLayout),
			Day:  date.Weekday().String(),
			Temperature: domain.Temperature{
				Max: int(math.Round(baseTemp + tempVariation + 2)),
				Min: int(math.Round(baseTemp + tempVariation - 2)),
				Avg: int(math.Round(baseTemp + tempVariation)),
			},
			Humidity:    int(math.Round(math.Max(50, math.Min(95, baseHumidity+humidityVariation)))),
			Rainfall:    rainfall,
			WindSpeed:   round1(wind),
			Description: describe(rainChance, tempVariation),
		})
	}

	return &domain.Forecast{
		Location: location,
		Current:  days[0],
		Days:     days,
		Alerts:   Alerts(days),
	}
}

// Alerts flags heavy rain, heat and strong wind over the next three days.
func Alerts(days []domain.DayForecast) []string {
	alerts := []string{}
	for _, d := range firstN(days, 3) {
		if d.Rainfall > 5 {
			alerts = append(alerts, fmt.Sprintf("Heavy rainfall expected on %s (%.1fmm)", d.Day, d.Rainfall))
		}
		if d.Temperature.Max > 35 {
			alerts = append(alerts, fmt.Sprintf("High temperature alert for %s (%d°C)", d.Day, d.Temperature.Max))
		}
		if d.WindSpeed > 20 {
			alerts = append(alerts, fmt.Sprintf("Strong winds expected on %s (%.1f km/h)", d.Day, d.WindSpeed))
		}
	}
	return alerts
}

func describe(rainChance, tempVariation float64) string {
	switch {
	case rainChance > 80:
		return "Heavy rain expected"
	case rainChance > 60:
		return "Light to moderate rain"
	case rainChance > 30:
		return "Partly cloudy with possible showers"
	case tempVariation > 2:
		return "Hot and sunny"
	default:
		return "Partly cloudy"
	}
}

func seed(location string, day time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(location))))
	h.Write([]byte{0})
	h.Write([]byte(day.Format(domain.DateLayout)))
	return int64(h.Sum64())
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func firstN(days []domain.DayForecast, n int) []domain.DayForecast {
	if len(days) < n {
		return days
	}
	return days[:n]
}
