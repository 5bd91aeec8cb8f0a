package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/schemas"
	"stockbot/src/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type RoleServiceI interface {
	Evaluate(ctx context.Context, userID, guildID string) (*schemas.RoleDelta, error)
	AssignRoles(ctx context.Context, userID, guildID string) error
	AssignAllRoles(ctx context.Context, guildID string) (*schemas.RoleRecomputeResult, error)
	AssignAllGuilds(ctx context.Context) ([]schemas.RoleRecomputeResult, error)
	UpsertRoleConfig(ctx context.Context, guildID, roleID string, threshold decimal.Decimal) (*models.RoleConfig, error)
	ListRoleConfigs(ctx context.Context, guildID string) ([]models.RoleConfig, error)
	DeleteRoleConfig(ctx context.Context, guildID, roleID string) error
}

type RoleService struct {
	roleConfigRepository repositories.RoleConfigRepository
	userRepository       repositories.UserRepository
	valuation            *ValuationService

	mutator        RoleMutator
	members        MemberDirectory
	botUserID      string
	defaultBalance decimal.Decimal
}

// NewRoleService wires the evaluator. mutator and members may be nil, in which case deltas are
// computed but not applied and bulk recomputes walk the known users of the guild.
func NewRoleService(roleConfigRepository repositories.RoleConfigRepository, userRepository repositories.UserRepository, valuation *ValuationService, mutator RoleMutator, members MemberDirectory, botUserID string, defaultBalance decimal.Decimal) *RoleService {
	return &RoleService{
		roleConfigRepository: roleConfigRepository,
		userRepository:       userRepository,
		valuation:            valuation,
		mutator:              mutator,
		members:              members,
		botUserID:            botUserID,
		defaultBalance:       defaultBalance,
	}
}

// EvaluateThresholds picks the highest threshold worth reaches. Every other configured role is
// returned for removal.
func EvaluateThresholds(configs []models.RoleConfig, worth decimal.Decimal) schemas.RoleDelta {
	sorted := make([]models.RoleConfig, len(configs))
	copy(sorted, configs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Threshold.GreaterThan(sorted[j].Threshold)
	})

	delta := schemas.RoleDelta{RolesToRemove: make([]string, 0, len(sorted))}
	for _, cfg := range sorted {
		if delta.RoleToAdd == nil && worth.GreaterThanOrEqual(cfg.Threshold) {
			roleID := cfg.RoleID
			delta.RoleToAdd = &roleID
			continue
		}
		delta.RolesToRemove = append(delta.RolesToRemove, cfg.RoleID)
	}
	return delta
}

func (s *RoleService) Evaluate(ctx context.Context, userID, guildID string) (*schemas.RoleDelta, error) {
	configs, err := s.roleConfigRepository.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	worth, err := s.valuation.NetWorth(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	delta := EvaluateThresholds(configs, worth)
	return &delta, nil
}

// AssignRoles evaluates the member and applies the delta. The bot's own account is skipped.
func (s *RoleService) AssignRoles(ctx context.Context, userID, guildID string) error {
	if s.botUserID != "" && userID == s.botUserID {
		return nil
	}
	if _, err := s.userRepository.Ensure(ctx, userID, guildID, s.defaultBalance, nil); err != nil {
		return err
	}

	delta, err := s.Evaluate(ctx, userID, guildID)
	if err != nil {
		return err
	}
	if s.mutator == nil {
		return nil
	}

	if delta.RoleToAdd != nil {
		if err := s.mutator.AddRole(ctx, userID, guildID, *delta.RoleToAdd); err != nil {
			return err
		}
	}
	if len(delta.RolesToRemove) > 0 {
		if err := s.mutator.RemoveRoles(ctx, userID, guildID, delta.RolesToRemove); err != nil {
			return err
		}
	}
	return nil
}

func (s *RoleService) guildMembers(ctx context.Context, guildID string) ([]string, error) {
	if s.members != nil {
		return s.members.GuildMemberIDs(ctx, guildID)
	}
	users, err := s.userRepository.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// AssignAllRoles recomputes every member of the guild one at a time. A failing member is
// logged and skipped.
func (s *RoleService) AssignAllRoles(ctx context.Context, guildID string) (*schemas.RoleRecomputeResult, error) {
	logger := utils.LoggerFromContext(ctx)
	started := time.Now()

	memberIDs, err := s.guildMembers(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("listing members of %s: %w", guildID, err)
	}

	result := &schemas.RoleRecomputeResult{GuildID: guildID}
	for _, memberID := range memberIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Evaluated++
		if err := s.AssignRoles(ctx, memberID, guildID); err != nil {
			result.Failed++
			logger.WithFields(logrus.Fields{"user": memberID, "guild": guildID}).
				Errorf("error while assigning roles: %v", err)
		}
	}

	logger.WithFields(logrus.Fields{
		"guild":     guildID,
		"evaluated": result.Evaluated,
		"failed":    result.Failed,
		"elapsed":   time.Since(started).String(),
	}).Info("role recompute finished")
	return result, nil
}

// AssignAllGuilds recomputes every guild that has at least one role configured.
func (s *RoleService) AssignAllGuilds(ctx context.Context) ([]schemas.RoleRecomputeResult, error) {
	guildIDs, err := s.roleConfigRepository.ListGuildIDs(ctx)
	if err != nil {
		return nil, err
	}

	logger := utils.LoggerFromContext(ctx)
	results := make([]schemas.RoleRecomputeResult, 0, len(guildIDs))
	for _, guildID := range guildIDs {
		result, err := s.AssignAllRoles(ctx, guildID)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			logger.WithField("guild", guildID).Errorf("error while recomputing guild roles: %v", err)
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

// UpsertRoleConfig creates or moves a role's threshold. Thresholds are unique per guild.
func (s *RoleService) UpsertRoleConfig(ctx context.Context, guildID, roleID string, threshold decimal.Decimal) (*models.RoleConfig, error) {
	if roleID == "" {
		return nil, fmt.Errorf("%w: role id is required", ErrInvalidAmount)
	}
	if !threshold.IsPositive() {
		return nil, fmt.Errorf("%w: threshold %s", ErrInvalidAmount, threshold)
	}

	existing, err := s.roleConfigRepository.GetByThreshold(ctx, guildID, threshold)
	switch {
	case err == nil && existing.RoleID != roleID:
		return nil, fmt.Errorf("%w: %s is used by role %s", ErrThresholdConflict, threshold, existing.RoleID)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	cfg := &models.RoleConfig{GuildID: guildID, RoleID: roleID, Threshold: threshold}
	if err := s.roleConfigRepository.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *RoleService) ListRoleConfigs(ctx context.Context, guildID string) ([]models.RoleConfig, error) {
	return s.roleConfigRepository.ListByGuild(ctx, guildID)
}

func (s *RoleService) DeleteRoleConfig(ctx context.Context, guildID, roleID string) error {
	err := s.roleConfigRepository.Delete(ctx, guildID, roleID)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: role %s is not configured", ErrNotFound, roleID)
	}
	return err
}
