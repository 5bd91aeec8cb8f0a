package render_test

import (
	"bytes"
	"testing"
	"time"

	"stockbot/src/models"
	"stockbot/src/schemas"
	"stockbot/src/utils/render"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func samplePoints() []schemas.SamplePoint {
	start := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	return []schemas.SamplePoint{
		{Value: decimal.NewFromInt(1000), Timestamp: start},
		{Value: decimal.RequireFromString("1012.5"), Timestamp: start.Add(12 * time.Hour)},
		{Value: decimal.RequireFromString("998.25"), Timestamp: start.Add(24 * time.Hour)},
	}
}

func TestLineChart(t *testing.T) {
	t.Run("renders an html page", func(t *testing.T) {
		page, err := render.LineChart("Net worth over 7d", "alice", samplePoints())
		require.NoError(t, err)
		assert.True(t, bytes.Contains(page, []byte("Net worth over 7d")))
		assert.True(t, bytes.Contains(page, []byte("2024-03-01 14:00")))
	})

	t.Run("needs at least two points", func(t *testing.T) {
		_, err := render.LineChart("title", "alice", samplePoints()[:1])
		assert.ErrorIs(t, err, render.ErrNotEnoughPoints)
	})
}

func TestWorthWorkbook(t *testing.T) {
	ledger := []models.Transaction{{
		AssetID:       "AAPL",
		Type:          models.TransactionBuy,
		Shares:        decimal.NewFromInt(2),
		PricePerShare: decimal.NewFromInt(100),
		BalanceBefore: decimal.NewFromInt(1000),
		BalanceAfter:  decimal.NewFromInt(800),
		SharesBefore:  decimal.Zero,
		SharesAfter:   decimal.NewFromInt(2),
		Timestamp:     time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
	}}

	data, err := render.WorthWorkbook(samplePoints(), ledger)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Worth", "Ledger"}, f.GetSheetList())

	worth, err := f.GetRows("Worth")
	require.NoError(t, err)
	require.Len(t, worth, 4)
	assert.Equal(t, []string{"Timestamp", "Net worth"}, worth[0])
	assert.Equal(t, "1012.5", worth[2][1])

	rows, err := f.GetRows("Ledger")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AAPL", rows[1][1])
	assert.Equal(t, "buy", rows[1][2])
	assert.Equal(t, "800", rows[1][6])
}
