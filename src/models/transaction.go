package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

func (t TransactionType) Valid() bool {
	return t == TransactionBuy || t == TransactionSell
}

// Transaction is one immutable ledger row. Rows are ordered by (Timestamp, ID).
type Transaction struct {
	ID            uint            `gorm:"primaryKey;autoIncrement;column:id"`
	PublicID      uuid.UUID       `gorm:"column:public_id;type:uuid;uniqueIndex;not null"`
	UserID        string          `gorm:"column:user_id;not null;index:idx_transactions_scope"`
	GuildID       string          `gorm:"column:guild_id;not null;index:idx_transactions_scope"`
	AssetID       string          `gorm:"column:asset_id;not null;index:idx_transactions_scope"`
	Type          TransactionType `gorm:"column:type;not null"`
	Shares        decimal.Decimal `gorm:"column:shares;type:numeric(20,8);not null"`
	PricePerShare decimal.Decimal `gorm:"column:price_per_share;type:numeric(20,8);not null"`
	BalanceBefore decimal.Decimal `gorm:"column:balance_before;type:numeric(20,8);not null"`
	BalanceAfter  decimal.Decimal `gorm:"column:balance_after;type:numeric(20,8);not null"`
	SharesBefore  decimal.Decimal `gorm:"column:shares_before;type:numeric(20,8);not null"`
	SharesAfter   decimal.Decimal `gorm:"column:shares_after;type:numeric(20,8);not null"`
	Timestamp     time.Time       `gorm:"column:timestamp;not null;index"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Value is the cash moved by the trade.
func (t Transaction) Value() decimal.Decimal {
	return t.Shares.Mul(t.PricePerShare)
}
