package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstThenRefill(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })
	capacity, rate := PerMinute(2)

	assert.True(t, l.Allow("signals", capacity, rate))
	assert.True(t, l.Allow("signals", capacity, rate))
	assert.False(t, l.Allow("signals", capacity, rate))
	assert.True(t, l.Allow("news", capacity, rate), "keys are independent")

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("signals", capacity, rate))
	assert.False(t, l.Allow("signals", capacity, rate))
}

func TestLimiterZeroDenies(t *testing.T) {
	l := New()
	c, r := PerMinute(0)
	assert.False(t, l.Allow("x", c, r))
}
