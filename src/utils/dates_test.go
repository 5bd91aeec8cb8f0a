package utils_test

import (
	"testing"
	"time"

	"stockbot/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDates(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("includes both ends when the range divides evenly", func(t *testing.T) {
		dates, err := utils.GenerateDates(start, start.Add(48*time.Hour), 12*time.Hour)
		require.NoError(t, err)
		require.Len(t, dates, 5)
		assert.Equal(t, start, dates[0])
		assert.Equal(t, start.Add(48*time.Hour), dates[4])
	})

	t.Run("stops before the end otherwise", func(t *testing.T) {
		dates, err := utils.GenerateDates(start, start.Add(25*time.Hour), 12*time.Hour)
		require.NoError(t, err)
		require.Len(t, dates, 3)
		assert.Equal(t, start.Add(24*time.Hour), dates[2])
	})

	t.Run("returns the start for an empty range", func(t *testing.T) {
		dates, err := utils.GenerateDates(start, start, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{start}, dates)
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		_, err := utils.GenerateDates(start, start.Add(-time.Hour), time.Hour)
		assert.Error(t, err)
	})

	t.Run("rejects a non positive interval", func(t *testing.T) {
		_, err := utils.GenerateDates(start, start.Add(time.Hour), 0)
		assert.Error(t, err)
	})
}

func TestSessionOpen(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	t.Run("uses today's open during the session", func(t *testing.T) {
		now := time.Date(2024, 3, 12, 11, 0, 0, 0, ny)
		open := utils.SessionOpen(now, ny)
		assert.Equal(t, time.Date(2024, 3, 12, 9, 30, 0, 0, ny).UTC(), open)
		assert.Equal(t, time.UTC, open.Location())
	})

	t.Run("uses yesterday's open before the bell", func(t *testing.T) {
		now := time.Date(2024, 3, 12, 8, 0, 0, 0, ny)
		assert.Equal(t, time.Date(2024, 3, 11, 9, 30, 0, 0, ny).UTC(), utils.SessionOpen(now, ny))
	})

	t.Run("treats the open itself as in session", func(t *testing.T) {
		now := time.Date(2024, 3, 12, 9, 30, 0, 0, ny)
		assert.Equal(t, now.UTC(), utils.SessionOpen(now, ny))
	})
}
