package services

import (
	"time"

	"stockbot/src/models"

	"github.com/shopspring/decimal"
)

// applyTrade returns the holdings of an asset after t.
func applyTrade(shares decimal.Decimal, t models.Transaction) decimal.Decimal {
	if t.Type == models.TransactionSell {
		return shares.Sub(t.Shares)
	}
	return shares.Add(t.Shares)
}

// FoldHoldings sums the signed share deltas of an ordered ledger per asset.
func FoldHoldings(txs []models.Transaction) map[string]decimal.Decimal {
	holdings := make(map[string]decimal.Decimal)
	for _, t := range txs {
		holdings[t.AssetID] = applyTrade(holdings[t.AssetID], t)
	}
	return holdings
}

// ledgerCursor replays an ordered ledger forward in time so that successive
// snapshots at ascending instants cost one pass over the rows.
type ledgerCursor struct {
	txs      []models.Transaction
	next     int
	holdings map[string]decimal.Decimal
}

func newLedgerCursor(txs []models.Transaction) *ledgerCursor {
	return &ledgerCursor{txs: txs, holdings: make(map[string]decimal.Decimal)}
}

// advanceTo applies every row with timestamp <= at. Instants must not decrease between calls.
func (c *ledgerCursor) advanceTo(at time.Time) {
	for c.next < len(c.txs) && !c.txs[c.next].Timestamp.After(at) {
		t := c.txs[c.next]
		c.holdings[t.AssetID] = applyTrade(c.holdings[t.AssetID], t)
		c.next++
	}
}

// cash is the balance after the last applied row, or fallback when none was applied.
func (c *ledgerCursor) cash(fallback decimal.Decimal) decimal.Decimal {
	if c.next == 0 {
		return fallback
	}
	return c.txs[c.next-1].BalanceAfter
}

// positions copies the assets currently held in positive quantity.
func (c *ledgerCursor) positions() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(c.holdings))
	for asset, shares := range c.holdings {
		if shares.IsPositive() {
			out[asset] = shares
		}
	}
	return out
}
