package services

import (
	"context"

	"stockbot/src/clients/yfinance"
)

// RoleMutator applies role changes on the chat platform.
type RoleMutator interface {
	AddRole(ctx context.Context, userID, guildID, roleID string) error
	RemoveRoles(ctx context.Context, userID, guildID string, roleIDs []string) error
}

// MemberDirectory lists the members of a guild.
type MemberDirectory interface {
	GuildMemberIDs(ctx context.Context, guildID string) ([]string, error)
}

// MarketDataClient is the subset of the market-data API the services need.
type MarketDataClient interface {
	GetStockInfo(ctx context.Context, symbol string) (*yfinance.StockInfo, error)
	GetLatestQuote(ctx context.Context, symbol string) (*yfinance.Quote, error)
}

// RoleAssigner re-evaluates a member's threshold role after their worth changed.
type RoleAssigner interface {
	AssignRoles(ctx context.Context, userID, guildID string) error
}
