package services_test

import (
	"context"
	"testing"
	"time"

	"stockbot/src/models"
	"stockbot/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshPrices(t *testing.T) {
	f := newFixture(t)
	f.market.names["AAPL"] = "Apple Inc."
	f.market.quotes["AAPL"] = dec("171.25")
	f.market.names["MSFT"] = "Microsoft Corporation"
	f.market.quotes["MSFT"] = dec("402.10")
	f.market.names["DELIST"] = "Delisted Co."

	result, err := f.svc.Prices.RefreshPrices(f.ctx, []string{"aapl", "MSFT", "DELIST", "NOPE"})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Requested)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, []string{"DELIST", "NOPE"}, result.Failed)

	t.Run("creates unseen assets from market data", func(t *testing.T) {
		asset, err := f.svc.Assets.GetAsset(f.ctx, "aapl")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", asset.ID)
		assert.Equal(t, "Apple Inc.", asset.Name)

		_, err = f.svc.Assets.GetAsset(f.ctx, "NOPE")
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("stamps prices with the observation time", func(t *testing.T) {
		point, err := f.svc.Prices.LatestPrice(f.ctx, "AAPL")
		require.NoError(t, err)
		assertDec(t, "171.25", point.Price)
		assert.True(t, point.Timestamp.Equal(t0))
	})

	t.Run("an asset without quotes has no price", func(t *testing.T) {
		_, err := f.svc.Prices.LatestPrice(f.ctx, "DELIST")
		assert.ErrorIs(t, err, services.ErrPriceNotFound)
	})

	t.Run("historical lookups use the last price at or before the instant", func(t *testing.T) {
		f.now = t0.Add(time.Hour)
		f.market.quotes["AAPL"] = dec("175")
		_, err := f.svc.Prices.RefreshPrices(f.ctx, []string{"AAPL"})
		require.NoError(t, err)

		point, err := f.svc.Prices.PriceAt(f.ctx, "AAPL", t0.Add(30*time.Minute))
		require.NoError(t, err)
		assertDec(t, "171.25", point.Price)

		_, err = f.svc.Prices.PriceAt(f.ctx, "AAPL", t0.Add(-time.Minute))
		assert.ErrorIs(t, err, services.ErrPriceNotFound)
	})
}

func TestRefreshPricesStopsWhenCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(f.ctx)
	cancel()

	result, err := f.svc.Prices.RefreshPrices(ctx, []string{"AAPL"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Updated)
}

func TestSearchAssets(t *testing.T) {
	f := newFixture(t)
	for _, a := range []models.Asset{
		{ID: "AAPL", Name: "Apple Inc."},
		{ID: "MSFT", Name: "Microsoft Corporation"},
		{ID: "PINE", Name: "Alpine Income Property"},
		{ID: "AMZN", Name: "Amazon.com Inc."},
	} {
		asset := a
		require.NoError(t, f.assetRepo.Create(f.ctx, &asset))
	}

	t.Run("symbol prefixes come before other matches", func(t *testing.T) {
		found, err := f.svc.Assets.SearchAssets(f.ctx, "a", 0)
		require.NoError(t, err)
		require.Len(t, found, 4)
		assert.ElementsMatch(t, []string{"AAPL", "AMZN"}, []string{found[0].ID, found[1].ID})
	})

	t.Run("names match case-insensitively", func(t *testing.T) {
		found, err := f.svc.Assets.SearchAssets(f.ctx, "ALPINE", 0)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "PINE", found[0].ID)
	})

	t.Run("limit caps the results", func(t *testing.T) {
		found, err := f.svc.Assets.SearchAssets(f.ctx, "", 2)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		found, err := f.svc.Assets.SearchAssets(f.ctx, "zzz", 0)
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})
}
