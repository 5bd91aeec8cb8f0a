package controllers

import (
	"context"

	"stockbot/src/schemas"
)

func (c *Controller) GetRoleConfigs(ctx context.Context, guildID string) ([]schemas.RoleConfigResponse, error) {
	configs, err := c.Services.Roles.ListRoleConfigs(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := make([]schemas.RoleConfigResponse, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, toRoleConfigResponse(cfg))
	}
	return out, nil
}

func (c *Controller) PutRoleConfig(ctx context.Context, guildID string, req schemas.RoleConfigRequest) (*schemas.RoleConfigResponse, error) {
	cfg, err := c.Services.Roles.UpsertRoleConfig(ctx, guildID, req.RoleID, req.Threshold)
	if err != nil {
		return nil, err
	}
	res := toRoleConfigResponse(*cfg)
	return &res, nil
}

func (c *Controller) DeleteRoleConfig(ctx context.Context, guildID, roleID string) error {
	return c.Services.Roles.DeleteRoleConfig(ctx, guildID, roleID)
}

// EvaluateRoles recomputes and applies the member's worth role, returning the delta.
func (c *Controller) EvaluateRoles(ctx context.Context, guildID, userID string) (*schemas.RoleDelta, error) {
	if err := c.Services.Roles.AssignRoles(ctx, userID, guildID); err != nil {
		return nil, err
	}
	return c.Services.Roles.Evaluate(ctx, userID, guildID)
}
