package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

// SamplePoint is one point of a worth or balance series.
type SamplePoint struct {
	Value     decimal.Decimal `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
}

type PortfolioPosition struct {
	AssetID string          `json:"assetId"`
	Shares  decimal.Decimal `json:"shares"`
	Price   decimal.Decimal `json:"price"`
	Worth   decimal.Decimal `json:"worth"`
	// Difference is the current price minus the first buy price.
	Difference decimal.Decimal `json:"difference"`
}

type PortfolioResponse struct {
	UserID     string              `json:"userId"`
	GuildID    string              `json:"guildId"`
	Balance    decimal.Decimal     `json:"balance"`
	TotalWorth decimal.Decimal     `json:"totalWorth"`
	Positions  []PortfolioPosition `json:"positions"`
}

type NetWorthResponse struct {
	UserID   string          `json:"userId"`
	GuildID  string          `json:"guildId"`
	AsOf     time.Time       `json:"asOf"`
	NetWorth decimal.Decimal `json:"netWorth"`
}

type HoldingsResponse struct {
	UserID   string                     `json:"userId"`
	GuildID  string                     `json:"guildId"`
	AsOf     time.Time                  `json:"asOf"`
	Holdings map[string]decimal.Decimal `json:"holdings"`
}

type GainResponse struct {
	AssetID string          `json:"assetId"`
	Gain    decimal.Decimal `json:"gain"`
}

type LeaderboardEntry struct {
	Rank     int             `json:"rank"`
	UserID   string          `json:"userId"`
	NetWorth decimal.Decimal `json:"netWorth"`
}

type WorthSeriesResponse struct {
	UserID string        `json:"userId"`
	Period string        `json:"period"`
	Points []SamplePoint `json:"points"`
}

// ChainBreak describes a ledger row whose snapshot does not follow from the previous row.
type ChainBreak struct {
	AssetID       string          `json:"assetId"`
	TransactionID uint            `json:"transactionId"`
	Expected      decimal.Decimal `json:"expected"`
	Actual        decimal.Decimal `json:"actual"`
	Reason        string          `json:"reason"`
}
