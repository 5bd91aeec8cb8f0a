package repositories_test

import (
	"context"
	"testing"

	"stockbot/src/database/testdb"
	"stockbot/src/models"
	"stockbot/src/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetRepository(t *testing.T) {
	db := testdb.New(t)
	repo := repositories.NewAssetRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Asset{ID: "MSFT", Name: "Microsoft Corporation", Description: "Software"}))
	require.NoError(t, repo.Create(ctx, &models.Asset{ID: "AAPL", Name: "Apple Inc.", Description: "Hardware"}))

	t.Run("Create keeps the first row for a symbol", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.Asset{ID: "AAPL", Name: "Renamed"}))

		asset, err := repo.GetByID(ctx, "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "Apple Inc.", asset.Name)
	})

	t.Run("GetAll orders by symbol", func(t *testing.T) {
		assets, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, assets, 2)
		assert.Equal(t, "AAPL", assets[0].ID)
		assert.Equal(t, "MSFT", assets[1].ID)
	})

	t.Run("GetByID reports missing symbols", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "NVDA")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
