package discord

import (
	"context"
	"errors"
	"fmt"

	"stockbot/src/config"

	"github.com/bwmarrin/discordgo"
)

const membersPageSize = 1000

type DiscordClientI interface {
	AddRole(ctx context.Context, userID, guildID, roleID string) error
	RemoveRoles(ctx context.Context, userID, guildID string, roleIDs []string) error
	GuildMemberIDs(ctx context.Context, guildID string) ([]string, error)
	BotUserID() string
}

// DiscordClient mutates member roles and lists guild members over the Discord REST API.
type DiscordClient struct {
	session   *discordgo.Session
	botUserID string
}

// NewClient opens a REST-only session. The bot user id is looked up when it is not configured.
func NewClient(cfg *config.Config) (*DiscordClient, error) {
	dc := cfg.ExternalClients.Discord
	if dc.Token == "" {
		return nil, errors.New("discord token is not configured")
	}
	session, err := discordgo.New("Bot " + dc.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	botUserID := dc.BotUserID
	if botUserID == "" {
		me, err := session.User("@me")
		if err != nil {
			return nil, fmt.Errorf("resolving bot user: %w", err)
		}
		botUserID = me.ID
	}
	return &DiscordClient{session: session, botUserID: botUserID}, nil
}

func (c *DiscordClient) BotUserID() string {
	return c.botUserID
}

func (c *DiscordClient) AddRole(_ context.Context, userID, guildID, roleID string) error {
	if err := c.session.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		return fmt.Errorf("adding role %s to %s: %w", roleID, userID, err)
	}
	return nil
}

// RemoveRoles attempts every removal and reports all failures together.
func (c *DiscordClient) RemoveRoles(_ context.Context, userID, guildID string, roleIDs []string) error {
	var errs []error
	for _, roleID := range roleIDs {
		if err := c.session.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
			errs = append(errs, fmt.Errorf("removing role %s from %s: %w", roleID, userID, err))
		}
	}
	return errors.Join(errs...)
}

// GuildMemberIDs pages through the guild's member list.
func (c *DiscordClient) GuildMemberIDs(ctx context.Context, guildID string) ([]string, error) {
	var ids []string
	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		members, err := c.session.GuildMembers(guildID, after, membersPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing members of %s: %w", guildID, err)
		}
		for _, m := range members {
			if m.User == nil {
				continue
			}
			ids = append(ids, m.User.ID)
			after = m.User.ID
		}
		if len(members) < membersPageSize {
			return ids, nil
		}
	}
}
