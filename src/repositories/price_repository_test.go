package repositories_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"stockbot/src/database/testdb"
	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceRepository(t *testing.T) {
	db := testdb.New(t)
	repo := repositories.NewPriceRepository(db)
	ctx := context.Background()

	for i, price := range []int64{100, 110, 105} {
		p := &models.PricePoint{AssetID: "AAPL", Price: decimal.NewFromInt(price), Timestamp: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.Insert(ctx, p))
	}

	t.Run("Latest returns the newest point", func(t *testing.T) {
		p, err := repo.Latest(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(105)))

		_, err = repo.Latest(ctx, "MSFT")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("AtOrBefore picks the last point not after the instant", func(t *testing.T) {
		p, err := repo.AtOrBefore(ctx, "AAPL", base.Add(90*time.Minute))
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(110)))

		p, err = repo.AtOrBefore(ctx, "AAPL", base.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(110)))

		_, err = repo.AtOrBefore(ctx, "AAPL", base.Add(-time.Minute))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("History lists points oldest first", func(t *testing.T) {
		points, err := repo.History(ctx, "AAPL")
		require.NoError(t, err)
		require.Len(t, points, 3)
		for i, want := range []int64{100, 110, 105} {
			assert.True(t, points[i].Price.Equal(decimal.NewFromInt(want)))
			assert.True(t, points[i].Timestamp.Equal(base.Add(time.Duration(i)*time.Hour)))
		}

		points, err = repo.History(ctx, "MSFT")
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("Insert ignores a duplicate observation", func(t *testing.T) {
		dup := &models.PricePoint{AssetID: "AAPL", Price: decimal.NewFromInt(999), Timestamp: base}
		require.NoError(t, repo.Insert(ctx, dup))

		p, err := repo.AtOrBefore(ctx, "AAPL", base)
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(100)))
	})
}

var errCacheDown = errors.New("cache unavailable")

type memoryCache struct {
	values map[string][]byte
	gets   int
	// down makes every write fail.
	down bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, result interface{}) error {
	c.gets++
	data, ok := c.values[key]
	if !ok {
		return repositories.ErrNotFound
	}
	return json.Unmarshal(data, result)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.down {
		return errCacheDown
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	if c.down {
		return errCacheDown
	}
	delete(c.values, key)
	return nil
}

func TestCachedPriceRepository(t *testing.T) {
	db := testdb.New(t)
	cache := newMemoryCache()
	repo := repositories.NewCachedPriceRepository(repositories.NewPriceRepository(db), cache, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &models.PricePoint{AssetID: "AAPL", Price: decimal.NewFromInt(100), Timestamp: base}))

	t.Run("Latest fills the cache", func(t *testing.T) {
		p, err := repo.Latest(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(100)))
		assert.Contains(t, cache.values, "price:latest:AAPL")
	})

	t.Run("Latest is served from the cache", func(t *testing.T) {
		require.NoError(t, db.Model(&models.PricePoint{}).Where("asset_id = ?", "AAPL").Update("price", decimal.NewFromInt(1)).Error)

		p, err := repo.Latest(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(100)))
	})

	t.Run("Insert invalidates the cached price", func(t *testing.T) {
		require.NoError(t, repo.Insert(ctx, &models.PricePoint{AssetID: "AAPL", Price: decimal.NewFromInt(120), Timestamp: base.Add(time.Hour)}))
		assert.NotContains(t, cache.values, "price:latest:AAPL")

		p, err := repo.Latest(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(120)))
	})

	t.Run("misses are not cached", func(t *testing.T) {
		_, err := repo.Latest(ctx, "MSFT")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.NotContains(t, cache.values, "price:latest:MSFT")
	})
}

func TestCachedPriceRepositoryCacheFailures(t *testing.T) {
	db := testdb.New(t)
	cache := newMemoryCache()
	cache.down = true
	repo := repositories.NewCachedPriceRepository(repositories.NewPriceRepository(db), cache, time.Minute)

	logger, hook := test.NewNullLogger()
	ctx := utils.WithLogger(context.Background(), logger)

	t.Run("Insert succeeds when invalidation fails", func(t *testing.T) {
		hook.Reset()
		require.NoError(t, repo.Insert(ctx, &models.PricePoint{AssetID: "AAPL", Price: decimal.NewFromInt(100), Timestamp: base}))

		require.Len(t, hook.AllEntries(), 1)
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "AAPL", hook.LastEntry().Data["asset"])
	})

	t.Run("Latest reads through when the cache cannot be filled", func(t *testing.T) {
		hook.Reset()
		p, err := repo.Latest(ctx, "AAPL")
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(100)))
		assert.Empty(t, cache.values)

		require.Len(t, hook.AllEntries(), 1)
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})
}
