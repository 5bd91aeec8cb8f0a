package controllers

import (
	"context"
	"fmt"
	"strings"

	"stockbot/src/models"
	"stockbot/src/schemas"
	"stockbot/src/services"
)

// Trade places a buy or sell at the latest price. Amount is a share count unless Mode is money.
func (c *Controller) Trade(ctx context.Context, guildID, userID string, req schemas.TradeRequest) (*schemas.TransactionResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = schemas.TradeModeShares
	}
	if mode != schemas.TradeModeShares && mode != schemas.TradeModeMoney {
		return nil, fmt.Errorf("%w: unknown mode %q", services.ErrInvalidAmount, mode)
	}

	order := services.OrderRequest{
		UserID:  userID,
		GuildID: guildID,
		AssetID: strings.ToUpper(strings.TrimSpace(req.AssetID)),
		Amount:  req.Amount,
		Mode:    mode,
	}

	var (
		row *models.Transaction
		err error
	)
	switch models.TransactionType(strings.ToLower(req.Type)) {
	case models.TransactionBuy:
		row, err = c.Services.Trades.Buy(ctx, order)
	case models.TransactionSell:
		row, err = c.Services.Trades.Sell(ctx, order)
	default:
		return nil, fmt.Errorf("%w: %q", services.ErrInvalidTradeType, req.Type)
	}
	if err != nil {
		return nil, err
	}
	res := toTransactionResponse(*row)
	return &res, nil
}

func (c *Controller) BuyAll(ctx context.Context, guildID, userID string, req schemas.AssetRequest) (*schemas.TransactionResponse, error) {
	row, err := c.Services.Trades.BuyAll(ctx, userID, guildID, strings.ToUpper(strings.TrimSpace(req.AssetID)))
	if err != nil {
		return nil, err
	}
	res := toTransactionResponse(*row)
	return &res, nil
}

func (c *Controller) Liquidate(ctx context.Context, guildID, userID string, req schemas.LiquidateRequest) ([]schemas.TransactionResponse, error) {
	var assetID *string
	if req.AssetID != nil && strings.TrimSpace(*req.AssetID) != "" {
		id := strings.ToUpper(strings.TrimSpace(*req.AssetID))
		assetID = &id
	}
	rows, err := c.Services.Trades.Liquidate(ctx, userID, guildID, assetID)
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(rows), nil
}

func (c *Controller) GetTrades(ctx context.Context, guildID, userID string, assetID *string) ([]schemas.TransactionResponse, error) {
	rows, err := c.Services.Trades.History(ctx, userID, guildID, assetID)
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(rows), nil
}
