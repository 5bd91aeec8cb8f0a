package controllers

import (
	"context"

	"stockbot/src/schemas"
)

// GetUser returns the member's account, opening it with the default balance on first contact.
func (c *Controller) GetUser(ctx context.Context, guildID, userID string) (*schemas.UserResponse, error) {
	user, err := c.Services.Trades.EnsureUser(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (c *Controller) AdjustBalance(ctx context.Context, guildID, userID string, req schemas.BalanceRequest) (*schemas.UserResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = schemas.AdjustSet
	}
	user, err := c.Services.Trades.AdjustBalance(ctx, userID, guildID, mode, req.Balance)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (c *Controller) AdjustShares(ctx context.Context, guildID, userID, assetID string, req schemas.SharesRequest) (*schemas.TransactionResponse, error) {
	row, err := c.Services.Trades.AdjustShares(ctx, userID, guildID, assetID, req.Mode, req.Amount)
	if err != nil {
		return nil, err
	}
	res := toTransactionResponse(*row)
	return &res, nil
}

func (c *Controller) Donate(ctx context.Context, guildID, userID string, req schemas.DonateRequest) (*schemas.DonationResponse, error) {
	from, to, err := c.Services.Trades.Donate(ctx, guildID, userID, req.ToUserID, req.Amount)
	if err != nil {
		return nil, err
	}
	return &schemas.DonationResponse{From: *toUserResponse(from), To: *toUserResponse(to)}, nil
}
