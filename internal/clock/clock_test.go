package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlausible(t *testing.T) {
	assert.True(t, Plausible(time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)))
	assert.True(t, Plausible(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, Plausible(time.Unix(0, 0)), "unset RTC reads as 1970")
	assert.False(t, Plausible(time.Date(1999, 12, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, Plausible(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSystemSourceReturnsPlausibleTime(t *testing.T) {
	s := NewSystemSource()
	slept := 0
	s.Sleep = func(time.Duration) { slept++ }

	// The host clock in tests is always plausible, so no retry happens.
	now := s.Now()
	assert.True(t, Plausible(now))
	assert.Zero(t, slept)
}

func TestFakeSourceScript(t *testing.T) {
	t0 := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
	f := NewFakeSource(t0, t0.Add(time.Second))

	assert.Equal(t, t0, f.Now())
	assert.Equal(t, t0.Add(time.Second), f.Now())
	assert.Equal(t, t0.Add(time.Second), f.Now(), "last timestamp repeats")
}
