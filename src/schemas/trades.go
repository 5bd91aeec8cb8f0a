package schemas

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeMode tells whether an amount is a share count or a cash value.
type TradeMode string

const (
	TradeModeShares TradeMode = "shares"
	TradeModeMoney  TradeMode = "money"
)

// AdjustMode is how an admin adjustment applies its amount.
type AdjustMode string

const (
	AdjustSet    AdjustMode = "set"
	AdjustAdd    AdjustMode = "add"
	AdjustRemove AdjustMode = "remove"
)

type TradeRequest struct {
	AssetID string          `json:"assetId"`
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Mode    TradeMode       `json:"mode"`
}

type AssetRequest struct {
	AssetID string `json:"assetId"`
}

type LiquidateRequest struct {
	AssetID *string `json:"assetId"`
}

type DonateRequest struct {
	ToUserID string          `json:"toUserId"`
	Amount   decimal.Decimal `json:"amount"`
}

// BalanceRequest sets the balance when Mode is empty.
type BalanceRequest struct {
	Mode    AdjustMode      `json:"mode"`
	Balance decimal.Decimal `json:"balance"`
}

type SharesRequest struct {
	Mode   AdjustMode      `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
}

type TransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"userId"`
	GuildID       string          `json:"guildId"`
	AssetID       string          `json:"assetId"`
	Type          string          `json:"type"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	SharesBefore  decimal.Decimal `json:"sharesBefore"`
	SharesAfter   decimal.Decimal `json:"sharesAfter"`
	Timestamp     time.Time       `json:"timestamp"`
}

type UserResponse struct {
	UserID  string          `json:"userId"`
	GuildID string          `json:"guildId"`
	Balance decimal.Decimal `json:"balance"`
}

type DonationResponse struct {
	From UserResponse `json:"from"`
	To   UserResponse `json:"to"`
}
