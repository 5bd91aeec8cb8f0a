package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetDetailResponse describes an asset. Price and PricedAt are nil until a price is recorded.
type AssetDetailResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	PricedAt    *time.Time       `json:"pricedAt"`
}
