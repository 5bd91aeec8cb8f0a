package repositories

import (
	"context"
	"time"

	"stockbot/src/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	// Ensure returns the user, creating it with defaultBalance when missing.
	Ensure(ctx context.Context, userID, guildID string, defaultBalance decimal.Decimal, tx *gorm.DB) (*models.User, error)
	Get(ctx context.Context, userID, guildID string, tx *gorm.DB) (*models.User, error)
	// UpdateBalance writes balance only if the row still carries user.Version. It returns
	// ErrStaleVersion otherwise and bumps user.Version on success.
	UpdateBalance(ctx context.Context, user *models.User, balance decimal.Decimal, tx *gorm.DB) error
	ListByGuild(ctx context.Context, guildID string) ([]models.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Ensure(ctx context.Context, userID, guildID string, defaultBalance decimal.Decimal, tx *gorm.DB) (*models.User, error) {
	user := &models.User{ID: userID, GuildID: guildID, Balance: defaultBalance}
	err := conn(ctx, r.db, tx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, userID, guildID, tx)
}

func (r *userRepo) Get(ctx context.Context, userID, guildID string, tx *gorm.DB) (*models.User, error) {
	var user models.User
	err := conn(ctx, r.db, tx).
		Where("id = ? AND guild_id = ?", userID, guildID).
		Take(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepo) UpdateBalance(ctx context.Context, user *models.User, balance decimal.Decimal, tx *gorm.DB) error {
	res := conn(ctx, r.db, tx).
		Model(&models.User{}).
		Where("id = ? AND guild_id = ? AND version = ?", user.ID, user.GuildID, user.Version).
		Updates(map[string]interface{}{
			"balance":    balance,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	user.Balance = balance
	user.Version++
	return nil
}

func (r *userRepo) ListByGuild(ctx context.Context, guildID string) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("guild_id = ?", guildID).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
