package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAllowSlidingWindow(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	defer l.Stop()

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("farmer:1"))
	assert.True(t, l.Allow("farmer:1"))
	assert.False(t, l.Allow("farmer:1"))
	assert.True(t, l.Allow("farmer:2"), "buckets are per key")

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("farmer:1"), "window slides")
}

func TestEmptyKeyIsUnlimited(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(""))
	}
}

func TestAllowStrictIsSeparate(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	assert.True(t, l.Allow("+911111111111"))
	assert.True(t, l.AllowStrict("+911111111111", 2, time.Minute))
	assert.True(t, l.AllowStrict("+911111111111", 2, time.Minute))
	assert.False(t, l.AllowStrict("+911111111111", 2, time.Minute))
}

func TestSweepDropsIdleBuckets(t *testing.T) {
	l := NewLimiter(5, time.Minute)
	defer l.Stop()

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.Allow("idle")

	now = now.Add(20 * time.Minute)
	l.Allow("busy")
	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.buckets, "idle")
	assert.Contains(t, l.buckets, "busy")
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	l.Stop()
	l.Stop()
}
