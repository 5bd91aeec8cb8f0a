package models

import "github.com/shopspring/decimal"

// RoleConfig grants RoleID to members of GuildID whose net worth reaches Threshold.
type RoleConfig struct {
	GuildID   string          `gorm:"primaryKey;column:guild_id;uniqueIndex:idx_role_configs_guild_threshold"`
	RoleID    string          `gorm:"primaryKey;column:role_id"`
	Threshold decimal.Decimal `gorm:"column:threshold;type:numeric(20,8);not null;uniqueIndex:idx_role_configs_guild_threshold"`
}

func (RoleConfig) TableName() string {
	return "role_configs"
}
