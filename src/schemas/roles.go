package schemas

import "github.com/shopspring/decimal"

// RoleDelta is the single role to grant and every other configured role to strip.
type RoleDelta struct {
	RoleToAdd     *string  `json:"roleToAdd"`
	RolesToRemove []string `json:"rolesToRemove"`
}

type RoleConfigRequest struct {
	RoleID    string          `json:"roleId"`
	Threshold decimal.Decimal `json:"threshold"`
}

type RoleConfigResponse struct {
	GuildID   string          `json:"guildId"`
	RoleID    string          `json:"roleId"`
	Threshold decimal.Decimal `json:"threshold"`
}

type RoleRecomputeResult struct {
	GuildID   string `json:"guildId"`
	Evaluated int    `json:"evaluated"`
	Failed    int    `json:"failed"`
}
