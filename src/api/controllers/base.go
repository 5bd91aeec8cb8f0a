package controllers

import (
	"context"
	"time"

	"stockbot/src/models"
	"stockbot/src/schemas"
	"stockbot/src/services"
)

type IController interface {
	GetUser(ctx context.Context, guildID, userID string) (*schemas.UserResponse, error)
	AdjustBalance(ctx context.Context, guildID, userID string, req schemas.BalanceRequest) (*schemas.UserResponse, error)
	AdjustShares(ctx context.Context, guildID, userID, assetID string, req schemas.SharesRequest) (*schemas.TransactionResponse, error)
	Donate(ctx context.Context, guildID, userID string, req schemas.DonateRequest) (*schemas.DonationResponse, error)

	GetPortfolio(ctx context.Context, guildID, userID string) (*schemas.PortfolioResponse, error)
	GetNetWorth(ctx context.Context, guildID, userID string, asOf *time.Time) (*schemas.NetWorthResponse, error)
	GetHoldings(ctx context.Context, guildID, userID string, assetID *string, asOf *time.Time) (*schemas.HoldingsResponse, error)
	GetGain(ctx context.Context, guildID, userID, assetID string) (*schemas.GainResponse, error)
	GetWorthSeries(ctx context.Context, guildID, userID, period string) (*schemas.WorthSeriesResponse, error)
	GetWorthChart(ctx context.Context, guildID, userID, period string) ([]byte, error)
	ExportWorth(ctx context.Context, guildID, userID, period string) ([]byte, error)
	VerifyLedger(ctx context.Context, guildID, userID string) ([]schemas.ChainBreak, error)
	GetLeaderboard(ctx context.Context, guildID string, limit int) ([]schemas.LeaderboardEntry, error)

	Trade(ctx context.Context, guildID, userID string, req schemas.TradeRequest) (*schemas.TransactionResponse, error)
	BuyAll(ctx context.Context, guildID, userID string, req schemas.AssetRequest) (*schemas.TransactionResponse, error)
	Liquidate(ctx context.Context, guildID, userID string, req schemas.LiquidateRequest) ([]schemas.TransactionResponse, error)
	GetTrades(ctx context.Context, guildID, userID string, assetID *string) ([]schemas.TransactionResponse, error)

	GetRoleConfigs(ctx context.Context, guildID string) ([]schemas.RoleConfigResponse, error)
	PutRoleConfig(ctx context.Context, guildID string, req schemas.RoleConfigRequest) (*schemas.RoleConfigResponse, error)
	DeleteRoleConfig(ctx context.Context, guildID, roleID string) error
	EvaluateRoles(ctx context.Context, guildID, userID string) (*schemas.RoleDelta, error)

	SearchAssets(ctx context.Context, query string, limit int) ([]models.Asset, error)
	GetAsset(ctx context.Context, assetID string) (*schemas.AssetDetailResponse, error)
	GetAssetPrice(ctx context.Context, assetID string, at *time.Time) (*models.PricePoint, error)
	GetAssetChart(ctx context.Context, assetID string) ([]byte, error)
}

type Controller struct {
	Services        *services.Services
	LeaderboardSize int
}

func NewController(svc *services.Services, leaderboardSize int) *Controller {
	return &Controller{Services: svc, LeaderboardSize: leaderboardSize}
}

func toUserResponse(u *models.User) *schemas.UserResponse {
	return &schemas.UserResponse{UserID: u.ID, GuildID: u.GuildID, Balance: u.Balance}
}

func toTransactionResponse(t models.Transaction) schemas.TransactionResponse {
	return schemas.TransactionResponse{
		ID:            t.PublicID,
		UserID:        t.UserID,
		GuildID:       t.GuildID,
		AssetID:       t.AssetID,
		Type:          string(t.Type),
		Shares:        t.Shares,
		PricePerShare: t.PricePerShare,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		SharesBefore:  t.SharesBefore,
		SharesAfter:   t.SharesAfter,
		Timestamp:     t.Timestamp,
	}
}

func toTransactionResponses(txs []models.Transaction) []schemas.TransactionResponse {
	out := make([]schemas.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toRoleConfigResponse(cfg models.RoleConfig) schemas.RoleConfigResponse {
	return schemas.RoleConfigResponse{GuildID: cfg.GuildID, RoleID: cfg.RoleID, Threshold: cfg.Threshold}
}
