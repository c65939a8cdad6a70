package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/pkg/cache"
)

var fixedDay = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate("Thrissur", fixedDay)
	b := Generate("thrissur", fixedDay.Add(10*time.Hour))
	assert.Equal(t, a.Days, b.Days)

	c := Generate("Thrissur", fixedDay.AddDate(0, 0, 1))
	assert.NotEqual(t, a.Days, c.Days)

	require.Len(t, a.Days, ForecastDays)
	assert.Equal(t, "2024-07-01", a.Days[0].Date)
	assert.Equal(t, "Monday", a.Days[0].Day)
	assert.Equal(t, a.Days[0], a.Current)
	for _, d := range a.Days {
		assert.GreaterOrEqual(t, d.Humidity, 50)
		assert.LessOrEqual(t, d.Humidity, 95)
		assert.True(t, d.Rainfall == 0 || d.Rainfall >= 6, "rainfall %v", d.Rainfall)
		assert.Equal(t, d.Temperature.Avg+2, d.Temperature.Max)
	}
}

func TestAlertsOnlyLookThreeDaysAhead(t *testing.T) {
	days := []domain.DayForecast{
		{Day: "Monday", Rainfall: 8.4, Temperature: domain.Temperature{Max: 30}},
		{Day: "Tuesday", Rainfall: 0, Temperature: domain.Temperature{Max: 36}},
		{Day: "Wednesday", WindSpeed: 22.5, Temperature: domain.Temperature{Max: 30}},
		{Day: "Thursday", Rainfall: 9.9, Temperature: domain.Temperature{Max: 40}},
	}
	assert.Equal(t, []string{
		"Heavy rainfall expected on Monday (8.4mm)",
		"High temperature alert for Tuesday (36°C)",
		"Strong winds expected on Wednesday (22.5 km/h)",
	}, Alerts(days))
}

func TestAdvise(t *testing.T) {
	wet := domain.DayForecast{Rainfall: 9, Humidity: 90, WindSpeed: 25, Temperature: domain.Temperature{Max: 36}}
	f := &domain.Forecast{Current: wet, Days: []domain.DayForecast{wet, wet, wet}}

	var kinds []string
	for _, a := range Advise(f, domain.LanguageEnglish) {
		kinds = append(kinds, a.Type)
	}
	assert.Equal(t, []string{"rainfall", "heat", "humidity", "coconut"}, kinds)

	ml := Advise(f, domain.LanguageMalayalam)
	assert.Equal(t, heavyRainAdvice[domain.LanguageMalayalam], ml[0].Message)

	dry := domain.DayForecast{Humidity: 60, Temperature: domain.Temperature{Max: 30}}
	f = &domain.Forecast{Current: dry, Days: []domain.DayForecast{dry, dry, dry}}
	advice := Advise(f, "fr")
	require.Len(t, advice, 1)
	assert.Equal(t, "drought", advice[0].Type)
	assert.Equal(t, droughtAdvice[domain.LanguageEnglish], advice[0].Message)
	assert.Equal(t, []string{"Land preparation", "Fertilizer application", "Pesticide spraying", "Harvesting"}, Recommended(f))
	assert.Empty(t, Avoid(f))
}

type countingCache struct {
	inner      domain.ForecastCache
	gets, sets int
	fail       bool
}

func (c *countingCache) GetForecast(ctx context.Context, key string) (*domain.Forecast, bool, error) {
	c.gets++
	if c.fail {
		return nil, false, errors.New("cache down")
	}
	return c.inner.GetForecast(ctx, key)
}

func (c *countingCache) SetForecast(ctx context.Context, key string, f *domain.Forecast, ttl time.Duration) error {
	c.sets++
	if c.fail {
		return errors.New("cache down")
	}
	return c.inner.SetForecast(ctx, key, f, ttl)
}

func TestServiceCachesPerLocationAndDay(t *testing.T) {
	mem := NewMemoryCache(cache.New[*domain.Forecast]())
	cc := &countingCache{inner: mem}
	svc := NewService(cc, time.Hour, quietLogger())
	svc.now = func() time.Time { return fixedDay }
	ctx := context.Background()

	first, err := svc.Forecast(ctx, "Kochi", domain.LanguageEnglish)
	require.NoError(t, err)
	second, err := svc.Forecast(ctx, " kochi ", domain.LanguageEnglish)
	require.NoError(t, err)

	assert.Same(t, first.Forecast, second.Forecast)
	assert.Equal(t, 2, cc.gets)
	assert.Equal(t, 1, cc.sets)

	cached, ok, err := mem.GetForecast(ctx, "kochi:2024-07-01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Kochi", cached.Location)
}

func TestServiceDegradesWhenCacheFails(t *testing.T) {
	svc := NewService(&countingCache{fail: true}, time.Hour, quietLogger())
	svc.now = func() time.Time { return fixedDay }

	r, err := svc.Forecast(context.Background(), "Kannur", domain.LanguageMalayalam)
	require.NoError(t, err)
	assert.Len(t, r.Days, ForecastDays)
}

func TestServiceRequiresLocation(t *testing.T) {
	svc := NewService(NewMemoryCache(cache.New[*domain.Forecast]()), time.Hour, quietLogger())
	_, err := svc.Forecast(context.Background(), "  ", domain.LanguageEnglish)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
