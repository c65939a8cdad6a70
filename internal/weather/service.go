package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/observability/metrics"
	"github.com/krishisakhi/backend/pkg/cache"
)

// Report is a forecast with the advice derived from it.
type Report struct {
	*domain.Forecast
	Advisories      []domain.Advisory `json:"advisories"`
	BestActivities  []string          `json:"bestActivities"`
	AvoidActivities []string          `json:"avoidActivities"`
}

// Service serves forecasts through a cache keyed by location and day
type Service struct {
	cache  domain.ForecastCache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a weather service
func NewService(c domain.ForecastCache, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cache: c, ttl: ttl, logger: logger, now: time.Now}
}

// Forecast returns today's forecast for location with advisories in lang.
// Cache failures are logged and the forecast is generated directly.
func (s *Service) Forecast(ctx context.Context, location string, lang domain.Language) (*Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", domain.ErrValidation)
	}

	today := s.now().UTC()
	key := CacheKey(location, today)

	f, ok, err := s.cache.GetForecast(ctx, key)
	if err != nil {
		s.logger.Warn("forecast cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	if ok {
		metrics.ObserveForecastCache("hit")
	} else {
		metrics.ObserveForecastCache("miss")
		f = Generate(location, today)
		if err := s.cache.SetForecast(ctx, key, f, s.ttl); err != nil {
			s.logger.Warn("forecast cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return &Report{
		Forecast:        f,
		Advisories:      Advise(f, lang),
		BestActivities:  Recommended(f),
		AvoidActivities: Avoid(f),
	}, nil
}

// CacheKey identifies a location's forecast for one day.
func CacheKey(location string, day time.Time) string {
	return strings.ToLower(strings.TrimSpace(location)) + ":" + day.UTC().Format(domain.DateLayout)
}

// MemoryCache keeps forecasts in process memory when no Redis is configured
type MemoryCache struct {
	c *cache.Cache[*domain.Forecast]
}

// NewMemoryCache wraps c as a forecast cache
func NewMemoryCache(c *cache.Cache[*domain.Forecast]) *MemoryCache {
	return &MemoryCache{c: c}
}

func (m *MemoryCache) GetForecast(_ context.Context, key string) (*domain.Forecast, bool, error) {
	f, ok := m.c.Get(key)
	return f, ok, nil
}

func (m *MemoryCache) SetForecast(_ context.Context, key string, f *domain.Forecast, ttl time.Duration) error {
	m.c.Set(key, f, ttl)
	return nil
}
