package repositories_test

import (
	"context"
	"testing"

	"stockbot/src/database/testdb"
	"stockbot/src/models"
	"stockbot/src/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleConfigRepository(t *testing.T) {
	db := testdb.New(t)
	repo := repositories.NewRoleConfigRepository(db)
	ctx := context.Background()

	for _, cfg := range []models.RoleConfig{
		{GuildID: "guild", RoleID: "bronze", Threshold: decimal.NewFromInt(1000)},
		{GuildID: "guild", RoleID: "gold", Threshold: decimal.NewFromInt(10000)},
		{GuildID: "guild", RoleID: "silver", Threshold: decimal.NewFromInt(5000)},
		{GuildID: "other", RoleID: "rich", Threshold: decimal.NewFromInt(1000)},
	} {
		cfg := cfg
		require.NoError(t, repo.Save(ctx, &cfg))
	}

	t.Run("ListByGuild orders by threshold descending", func(t *testing.T) {
		configs, err := repo.ListByGuild(ctx, "guild")
		require.NoError(t, err)
		require.Len(t, configs, 3)
		assert.Equal(t, "gold", configs[0].RoleID)
		assert.Equal(t, "silver", configs[1].RoleID)
		assert.Equal(t, "bronze", configs[2].RoleID)
	})

	t.Run("Save moves an existing role's threshold", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, &models.RoleConfig{GuildID: "guild", RoleID: "bronze", Threshold: decimal.NewFromInt(2000)}))

		cfg, err := repo.GetByThreshold(ctx, "guild", decimal.NewFromInt(2000))
		require.NoError(t, err)
		assert.Equal(t, "bronze", cfg.RoleID)

		_, err = repo.GetByThreshold(ctx, "guild", decimal.NewFromInt(1000))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("ListGuildIDs is distinct and sorted", func(t *testing.T) {
		ids, err := repo.ListGuildIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"guild", "other"}, ids)
	})

	t.Run("Delete removes one role", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "guild", "gold"))
		assert.ErrorIs(t, repo.Delete(ctx, "guild", "gold"), repositories.ErrNotFound)

		configs, err := repo.ListByGuild(ctx, "guild")
		require.NoError(t, err)
		assert.Len(t, configs, 2)
	})
}
