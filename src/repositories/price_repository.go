package repositories

import (
	"context"
	"time"

	"stockbot/src/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PriceRepository interface {
	Latest(ctx context.Context, assetID string) (*models.PricePoint, error)
	// AtOrBefore returns the most recent price observed at or before at.
	AtOrBefore(ctx context.Context, assetID string, at time.Time) (*models.PricePoint, error)
	// History returns every stored point of the asset, oldest first.
	History(ctx context.Context, assetID string) ([]models.PricePoint, error)
	// Insert stores a price point. A second point for the same asset and timestamp is ignored.
	Insert(ctx context.Context, p *models.PricePoint) error
}

type priceRepo struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) PriceRepository {
	return &priceRepo{db: db}
}

func (r *priceRepo) Latest(ctx context.Context, assetID string) (*models.PricePoint, error) {
	var p models.PricePoint
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order(`"timestamp" DESC`).
		Take(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *priceRepo) AtOrBefore(ctx context.Context, assetID string, at time.Time) (*models.PricePoint, error) {
	var p models.PricePoint
	err := r.db.WithContext(ctx).
		Where(`asset_id = ? AND "timestamp" <= ?`, assetID, at.UTC()).
		Order(`"timestamp" DESC`).
		Take(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *priceRepo) History(ctx context.Context, assetID string) ([]models.PricePoint, error) {
	var points []models.PricePoint
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order(`"timestamp" ASC`).
		Find(&points).Error
	return points, err
}

func (r *priceRepo) Insert(ctx context.Context, p *models.PricePoint) error {
	p.Timestamp = p.Timestamp.UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p).Error
}
