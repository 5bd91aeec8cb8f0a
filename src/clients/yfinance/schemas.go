package yfinance

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockInfoResponse struct {
	Symbol               string  `json:"symbol"`
	LongName             string  `json:"longName"`
	ShortName            string  `json:"shortName"`
	LongBusinessSummary  string  `json:"longBusinessSummary"`
	ShortBusinessSummary string  `json:"shortBusinessSummary"`
	Sector               string  `json:"sector"`
	Industry             string  `json:"industry"`
	MarketCap            float64 `json:"marketCap"`
	Currency             string  `json:"currency"`
	Exchange             string  `json:"exchange"`
}

type HistoricalPriceResponse struct {
	Close       float64 `json:"close"`
	Dividends   float64 `json:"dividends"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Open        float64 `json:"open"`
	StockSplits float64 `json:"stockSplits"`
	Timestamp   string  `json:"timestamp"`
	Volume      float64 `json:"volume"`
}

// StockInfo is the catalog data needed to create an asset.
type StockInfo struct {
	Symbol      string
	Name        string
	Description string
}

// HistoricalPrices holds closing prices in chronological order.
type HistoricalPrices struct {
	Prices     []decimal.Decimal
	Timestamps []time.Time
}

// Quote is the most recent close of a symbol.
type Quote struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
}
