package repositories

import (
	"context"
	"time"

	"stockbot/src/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter scopes a ledger query to one user in one guild.
type TransactionFilter struct {
	UserID  string
	GuildID string
	AssetID *string
	Type    *models.TransactionType
	// Until keeps rows with timestamp <= Until.
	Until *time.Time
}

type TransactionRepository interface {
	Insert(ctx context.Context, t *models.Transaction, tx *gorm.DB) error
	// Query returns matching rows in ledger order (timestamp, id).
	Query(ctx context.Context, filter TransactionFilter, tx *gorm.DB) ([]models.Transaction, error)
	Latest(ctx context.Context, userID, guildID, assetID string, tx *gorm.DB) (*models.Transaction, error)
	FirstBuy(ctx context.Context, userID, guildID, assetID string) (*models.Transaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Insert(ctx context.Context, t *models.Transaction, tx *gorm.DB) error {
	if t.PublicID == uuid.Nil {
		t.PublicID = uuid.New()
	}
	t.Timestamp = t.Timestamp.UTC()
	return conn(ctx, r.db, tx).Create(t).Error
}

func (r *transactionRepo) Query(ctx context.Context, filter TransactionFilter, tx *gorm.DB) ([]models.Transaction, error) {
	q := conn(ctx, r.db, tx).
		Where("user_id = ? AND guild_id = ?", filter.UserID, filter.GuildID)
	if filter.AssetID != nil {
		q = q.Where("asset_id = ?", *filter.AssetID)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Until != nil {
		q = q.Where(`"timestamp" <= ?`, filter.Until.UTC())
	}

	var transactions []models.Transaction
	if err := q.Order(`"timestamp" ASC, id ASC`).Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *transactionRepo) Latest(ctx context.Context, userID, guildID, assetID string, tx *gorm.DB) (*models.Transaction, error) {
	var t models.Transaction
	err := conn(ctx, r.db, tx).
		Where("user_id = ? AND guild_id = ? AND asset_id = ?", userID, guildID, assetID).
		Order(`"timestamp" DESC, id DESC`).
		Take(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *transactionRepo) FirstBuy(ctx context.Context, userID, guildID, assetID string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND guild_id = ? AND asset_id = ? AND type = ?", userID, guildID, assetID, models.TransactionBuy).
		Order(`"timestamp" ASC, id ASC`).
		Take(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}
