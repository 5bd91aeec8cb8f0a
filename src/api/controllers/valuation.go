package controllers

import (
	"context"
	"fmt"
	"time"

	"stockbot/src/schemas"
	"stockbot/src/utils"
	"stockbot/src/utils/render"

	"github.com/shopspring/decimal"
)

func (c *Controller) GetPortfolio(ctx context.Context, guildID, userID string) (*schemas.PortfolioResponse, error) {
	return c.Services.Valuation.Portfolio(ctx, userID, guildID)
}

// GetNetWorth values the member at asOf, or live when asOf is nil.
func (c *Controller) GetNetWorth(ctx context.Context, guildID, userID string, asOf *time.Time) (*schemas.NetWorthResponse, error) {
	at := time.Now().UTC()
	var worth decimal.Decimal
	var err error
	if asOf != nil {
		at = asOf.UTC()
		worth, err = c.Services.Valuation.NetWorthAt(ctx, userID, guildID, at)
	} else {
		worth, err = c.Services.Valuation.NetWorth(ctx, userID, guildID)
	}
	if err != nil {
		return nil, err
	}
	return &schemas.NetWorthResponse{UserID: userID, GuildID: guildID, AsOf: at, NetWorth: worth}, nil
}

func (c *Controller) GetHoldings(ctx context.Context, guildID, userID string, assetID *string, asOf *time.Time) (*schemas.HoldingsResponse, error) {
	at := time.Now().UTC()
	if asOf != nil {
		at = asOf.UTC()
	}
	holdings, err := c.Services.Valuation.HoldingsAt(ctx, userID, guildID, assetID, at)
	if err != nil {
		return nil, err
	}
	return &schemas.HoldingsResponse{UserID: userID, GuildID: guildID, AsOf: at, Holdings: holdings}, nil
}

func (c *Controller) GetGain(ctx context.Context, guildID, userID, assetID string) (*schemas.GainResponse, error) {
	gain, err := c.Services.Valuation.UnrealizedGain(ctx, userID, guildID, assetID)
	if err != nil {
		return nil, err
	}
	return &schemas.GainResponse{AssetID: assetID, Gain: gain}, nil
}

func (c *Controller) GetWorthSeries(ctx context.Context, guildID, userID, period string) (*schemas.WorthSeriesResponse, error) {
	points, err := c.Services.Sampler.WorthSeries(ctx, userID, guildID, period)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = string(utils.DefaultPeriod)
	}
	return &schemas.WorthSeriesResponse{UserID: userID, Period: period, Points: points}, nil
}

// GetWorthChart renders the worth series as an HTML line chart.
func (c *Controller) GetWorthChart(ctx context.Context, guildID, userID, period string) ([]byte, error) {
	series, err := c.GetWorthSeries(ctx, guildID, userID, period)
	if err != nil {
		return nil, err
	}
	return render.LineChart(fmt.Sprintf("Net worth over %s", series.Period), userID, series.Points)
}

// ExportWorth builds a workbook with the worth series and the member's ledger.
func (c *Controller) ExportWorth(ctx context.Context, guildID, userID, period string) ([]byte, error) {
	series, err := c.GetWorthSeries(ctx, guildID, userID, period)
	if err != nil {
		return nil, err
	}
	ledger, err := c.Services.Trades.History(ctx, userID, guildID, nil)
	if err != nil {
		return nil, err
	}
	return render.WorthWorkbook(series.Points, ledger)
}

func (c *Controller) VerifyLedger(ctx context.Context, guildID, userID string) ([]schemas.ChainBreak, error) {
	return c.Services.Valuation.VerifyChain(ctx, userID, guildID)
}

// GetLeaderboard ranks the guild by net worth. A non positive limit uses the configured size.
func (c *Controller) GetLeaderboard(ctx context.Context, guildID string, limit int) ([]schemas.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = c.LeaderboardSize
	}
	return c.Services.Valuation.Leaderboard(ctx, guildID, limit)
}
