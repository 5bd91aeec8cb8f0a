package services_test

import (
	"testing"
	"time"

	"stockbot/src/models"
	"stockbot/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorthSeriesWithoutTrades(t *testing.T) {
	f := newFixture(t)

	points, err := f.svc.Sampler.WorthSeries(f.ctx, "alice", "guild", "7d")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assertDec(t, "1000", points[0].Value)
	assert.Equal(t, f.now, points[0].Timestamp)
}

func TestWorthSeries(t *testing.T) {
	f := newFixture(t)
	start := t0.Add(-6 * 24 * time.Hour)
	f.price("AAPL", "100", start.Add(-time.Hour))
	f.trade("alice", "AAPL", models.TransactionBuy, "5", "100", start)
	f.price("AAPL", "110", start.Add(48*time.Hour))
	f.trade("alice", "AAPL", models.TransactionSell, "2", "110", start.Add(72*time.Hour))
	f.price("AAPL", "130", start.Add(120*time.Hour))
	f.now = t0.Add(5 * time.Minute)

	for _, period := range []string{"", "1d", "7d", "30d", "90d", "1y"} {
		t.Run("period "+period, func(t *testing.T) {
			points, err := f.svc.Sampler.WorthSeries(f.ctx, "alice", "guild", period)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(points), 2)

			for i := 1; i < len(points); i++ {
				assert.False(t, points[i].Timestamp.Before(points[i-1].Timestamp), "point %d goes back in time", i)
			}
			assert.Equal(t, f.now, points[len(points)-1].Timestamp)

			for _, p := range points {
				want, err := f.svc.Valuation.NetWorthAt(f.ctx, "alice", "guild", p.Timestamp)
				require.NoError(t, err)
				assert.True(t, want.Equal(p.Value), "at %s: want %s, got %s", p.Timestamp, want, p.Value)
			}
		})
	}

	t.Run("live value ends the series", func(t *testing.T) {
		points, err := f.svc.Sampler.WorthSeries(f.ctx, "alice", "guild", "7d")
		require.NoError(t, err)
		assertDec(t, "1110", points[len(points)-1].Value)
	})
}

func TestBalanceSeries(t *testing.T) {
	f := newFixture(t)
	f.trade("alice", "AAPL", models.TransactionBuy, "5", "100", t0.Add(-3*24*time.Hour))
	f.now = t0

	points, err := f.svc.Sampler.BalanceSeries(f.ctx, "alice", "guild", "7d")
	require.NoError(t, err)
	for _, p := range points {
		assertDec(t, "500", p.Value)
	}
}

func TestWorthSeriesInvalidPeriod(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Sampler.WorthSeries(f.ctx, "alice", "guild", "2w")
	assert.ErrorIs(t, err, services.ErrInvalidPeriod)
}
