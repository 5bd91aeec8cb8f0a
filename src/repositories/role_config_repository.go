package repositories

import (
	"context"

	"stockbot/src/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleConfigRepository interface {
	// ListByGuild returns the guild's configs ordered by threshold, highest first.
	ListByGuild(ctx context.Context, guildID string) ([]models.RoleConfig, error)
	GetByThreshold(ctx context.Context, guildID string, threshold decimal.Decimal) (*models.RoleConfig, error)
	Save(ctx context.Context, cfg *models.RoleConfig) error
	Delete(ctx context.Context, guildID, roleID string) error
	ListGuildIDs(ctx context.Context) ([]string, error)
}

type roleConfigRepo struct {
	db *gorm.DB
}

func NewRoleConfigRepository(db *gorm.DB) RoleConfigRepository {
	return &roleConfigRepo{db: db}
}

func (r *roleConfigRepo) ListByGuild(ctx context.Context, guildID string) ([]models.RoleConfig, error) {
	var configs []models.RoleConfig
	err := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("threshold DESC").
		Find(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *roleConfigRepo) GetByThreshold(ctx context.Context, guildID string, threshold decimal.Decimal) (*models.RoleConfig, error) {
	var cfg models.RoleConfig
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND threshold = ?", guildID, threshold).
		Take(&cfg).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

func (r *roleConfigRepo) Save(ctx context.Context, cfg *models.RoleConfig) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guild_id"}, {Name: "role_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"threshold"}),
		}).
		Create(cfg).Error
}

func (r *roleConfigRepo) Delete(ctx context.Context, guildID, roleID string) error {
	res := r.db.WithContext(ctx).
		Where("guild_id = ? AND role_id = ?", guildID, roleID).
		Delete(&models.RoleConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *roleConfigRepo) ListGuildIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.RoleConfig{}).
		Distinct("guild_id").
		Order("guild_id").
		Pluck("guild_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
