package scheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	"stockbot/src/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduledTask(t *testing.T) {
	t.Run("rejects a malformed spec", func(t *testing.T) {
		_, err := scheduler.NewScheduledTask("every monday", time.UTC, func() {})
		assert.Error(t, err)
	})

	t.Run("reports the next run in the given location", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)

		task, err := scheduler.NewScheduledTask("0,30 9-16 * * 1-5", loc, func() {})
		require.NoError(t, err)
		defer task.Cancel()

		next := task.Next().In(loc)
		assert.True(t, next.After(time.Now()))
		assert.Contains(t, []int{0, 30}, next.Minute())
		assert.GreaterOrEqual(t, next.Hour(), 9)
		assert.LessOrEqual(t, next.Hour(), 16)
	})

	t.Run("runs until cancelled", func(t *testing.T) {
		var runs int32
		task, err := scheduler.NewScheduledTask("@every 1s", nil, func() {
			atomic.AddInt32(&runs, 1)
		})
		require.NoError(t, err)

		assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) > 0 }, 3*time.Second, 50*time.Millisecond)

		task.Cancel()
		task.Cancel()
		after := atomic.LoadInt32(&runs)
		time.Sleep(1500 * time.Millisecond)
		assert.Equal(t, after, atomic.LoadInt32(&runs))
	})
}
