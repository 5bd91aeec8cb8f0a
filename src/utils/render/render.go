package render

import (
	"bytes"
	"errors"

	"stockbot/src/models"
	"stockbot/src/schemas"
	"stockbot/src/utils"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/xuri/excelize/v2"
)

const chartTimeLayout = "2006-01-02 15:04"

// ErrNotEnoughPoints is returned when a series cannot be drawn as a line.
var ErrNotEnoughPoints = errors.New("at least two points are needed to draw a chart")

// LineChart renders a series as a standalone HTML line chart.
func LineChart(title, seriesName string, series []schemas.SamplePoint) ([]byte, error) {
	if len(series) < 2 {
		return nil, ErrNotEnoughPoints
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)

	labels := make([]string, 0, len(series))
	items := make([]opts.LineData, 0, len(series))
	for _, p := range series {
		labels = append(labels, p.Timestamp.UTC().Format(chartTimeLayout))
		items = append(items, opts.LineData{Value: p.Value.Round(2).InexactFloat64()})
	}
	line.SetXAxis(labels).AddSeries(seriesName, items,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: utils.GetChartColor(0)}),
	)

	var out bytes.Buffer
	if err := line.Render(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WorthWorkbook exports a worth series and the ledger it was computed from as an xlsx file.
func WorthWorkbook(series []schemas.SamplePoint, ledger []models.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const worthSheet, ledgerSheet = "Worth", "Ledger"
	if err := f.SetSheetName("Sheet1", worthSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(ledgerSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(worthSheet, "A1", &[]interface{}{"Timestamp", "Net worth"}); err != nil {
		return nil, err
	}
	for i, p := range series {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{p.Timestamp.UTC().Format(chartTimeLayout), p.Value.InexactFloat64()}
		if err := f.SetSheetRow(worthSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	header := []interface{}{"Timestamp", "Asset", "Type", "Shares", "Price per share", "Balance before", "Balance after", "Shares before", "Shares after"}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, t := range ledger {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			t.Timestamp.UTC().Format(chartTimeLayout),
			t.AssetID,
			string(t.Type),
			t.Shares.InexactFloat64(),
			t.PricePerShare.InexactFloat64(),
			t.BalanceBefore.InexactFloat64(),
			t.BalanceAfter.InexactFloat64(),
			t.SharesBefore.InexactFloat64(),
			t.SharesAfter.InexactFloat64(),
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
