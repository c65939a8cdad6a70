package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishisakhi/backend/internal/domain"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(context.Background(), "redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestForecastRoundTrip(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	_, ok, err := c.GetForecast(ctx, "thrissur:2024-01-01")
	require.NoError(t, err)
	assert.False(t, ok)

	f := &domain.Forecast{
		Location: "Thrissur",
		Days:     []domain.DayForecast{{Date: "2024-01-01", Rainfall: 6.5}},
		Alerts:   []string{"Heavy rain expected"},
	}
	require.NoError(t, c.SetForecast(ctx, "thrissur:2024-01-01", f, time.Hour))
	assert.True(t, mr.Exists("forecast:thrissur:2024-01-01"))

	got, ok, err := c.GetForecast(ctx, "thrissur:2024-01-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f, got)

	mr.FastForward(2 * time.Hour)
	_, ok, err = c.GetForecast(ctx, "thrissur:2024-01-01")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestClient(t)
	require.NoError(t, mr.Set("forecast:bad", "{not json"))

	_, ok, err := c.GetForecast(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("forecast:bad"))
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "::not-a-url", nil)
	assert.Error(t, err)
}
