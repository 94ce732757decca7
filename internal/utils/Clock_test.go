package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfWeek(t *testing.T) {
	wednesday := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

	t.Run("should go back to sunday", func(t *testing.T) {
		assert.Equal(t, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), StartOfWeek(wednesday, time.Sunday))
	})

	t.Run("should go back to monday", func(t *testing.T) {
		assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(wednesday, time.Monday))
	})

	t.Run("should stay on the first day itself", func(t *testing.T) {
		monday := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(monday, time.Monday))
	})
}

func TestWallClock(t *testing.T) {
	warsaw := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2024, 6, 12, 9, 0, 0, 0, warsaw)

	wall := WallClock(local)

	assert.Equal(t, time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC), wall)
	assert.True(t, SameDay(local, wall))
}

func TestMockClock(t *testing.T) {
	clock := &MockClock{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	clock.SetNow(now)

	assert.Equal(t, now, clock.Now())
}
