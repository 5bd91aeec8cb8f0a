package yfinance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockbot/src/config"
	"stockbot/src/utils/requests"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

type YFinanceClientI interface {
	GetStockInfo(ctx context.Context, symbol string) (*StockInfo, error)
	GetStockHistoricalPrice(ctx context.Context, symbol string, days int) (*HistoricalPrices, error)
	GetLatestQuote(ctx context.Context, symbol string) (*Quote, error)
}

type YFinanceClient struct {
	API         *requests.ExternalAPIService
	BaseURL     string
	MaxAttempts int
	BaseBackoff time.Duration
}

// NewClient creates a new instance of YFinanceClient
func NewClient(cfg *config.Config) *YFinanceClient {
	yf := cfg.ExternalClients.YFinance
	return &YFinanceClient{
		API:         requests.NewExternalAPIService(yf.Timeout),
		BaseURL:     strings.TrimRight(yf.BaseURL, "/"),
		MaxAttempts: yf.MaxAttempts,
		BaseBackoff: yf.BaseBackoff,
	}
}

func (c *YFinanceClient) backoff() retry.Backoff {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := c.BaseBackoff
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	return retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(base))
}

// getJSON decodes the response of path into out. Transport errors, 429 and 5xx responses are retried.
func (c *YFinanceClient) getJSON(ctx context.Context, op, symbol, path string, params url.Values, out interface{}) error {
	endpoint := c.BaseURL + path
	var status int

	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		resp, err := c.API.Get(ctx, endpoint, "", params)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil
	})
	if err != nil {
		return &FetchError{Op: op, Symbol: symbol, StatusCode: status, Err: err}
	}
	return nil
}

// GetStockInfo fetches the display name and description of a ticker
func (c *YFinanceClient) GetStockInfo(ctx context.Context, symbol string) (*StockInfo, error) {
	params := url.Values{}
	params.Add("ticker", symbol)

	var info StockInfoResponse
	if err := c.getJSON(ctx, "stock info", symbol, "/api/v1/finance/stocks/info", params, &info); err != nil {
		return nil, err
	}
	if info.Symbol == "" {
		return nil, &FetchError{Op: "stock info", Symbol: symbol, StatusCode: http.StatusOK, Err: fmt.Errorf("%w: missing symbol", ErrInvalidInput)}
	}

	name := firstNonEmpty(info.LongName, info.ShortName, symbol)
	description := firstNonEmpty(info.LongBusinessSummary, info.ShortBusinessSummary, fmt.Sprintf("Stock information for %s", symbol))
	return &StockInfo{Symbol: info.Symbol, Name: name, Description: description}, nil
}

// GetStockHistoricalPrice fetches daily closes for the last days days
func (c *YFinanceClient) GetStockHistoricalPrice(ctx context.Context, symbol string, days int) (*HistoricalPrices, error) {
	if days < 1 {
		days = 1
	}
	params := url.Values{}
	params.Add("ticker", symbol)
	params.Add("period", fmt.Sprintf("%dd", days))

	var rows []HistoricalPriceResponse
	if err := c.getJSON(ctx, "stock price", symbol, "/api/v1/finance/stocks/historical", params, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &FetchError{Op: "stock price", Symbol: symbol, StatusCode: http.StatusOK, Err: ErrNoPriceData}
	}

	history := &HistoricalPrices{
		Prices:     make([]decimal.Decimal, 0, len(rows)),
		Timestamps: make([]time.Time, 0, len(rows)),
	}
	for _, row := range rows {
		ts, err := parseTimestamp(row.Timestamp)
		if err != nil {
			return nil, &FetchError{Op: "stock price", Symbol: symbol, StatusCode: http.StatusOK, Err: fmt.Errorf("%w: %v", ErrInvalidInput, err)}
		}
		history.Prices = append(history.Prices, decimal.NewFromFloat(row.Close))
		history.Timestamps = append(history.Timestamps, ts)
	}
	return history, nil
}

// GetLatestQuote returns the last close of the one day history.
func (c *YFinanceClient) GetLatestQuote(ctx context.Context, symbol string) (*Quote, error) {
	history, err := c.GetStockHistoricalPrice(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}
	last := len(history.Prices) - 1
	return &Quote{Symbol: symbol, Price: history.Prices[last], Timestamp: history.Timestamps[last]}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n])
}
