package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is an observed price of an asset at a moment.
type PricePoint struct {
	ID        uint            `gorm:"primaryKey;autoIncrement;column:id" json:"-"`
	AssetID   string          `gorm:"column:asset_id;not null;uniqueIndex:idx_prices_asset_timestamp" json:"assetId"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(20,8);not null" json:"price"`
	Timestamp time.Time       `gorm:"column:timestamp;not null;uniqueIndex:idx_prices_asset_timestamp" json:"timestamp"`
}

func (PricePoint) TableName() string {
	return "prices"
}
