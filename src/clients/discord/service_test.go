package discord_test

import (
	"testing"

	"stockbot/src/clients/discord"
	"stockbot/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		_, err := discord.NewClient(&config.Config{})
		assert.Error(t, err)
	})

	t.Run("uses the configured bot user id", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.ExternalClients.Discord = config.DiscordConfig{Token: "token", BotUserID: "42"}

		client, err := discord.NewClient(cfg)
		require.NoError(t, err)
		assert.Equal(t, "42", client.BotUserID())
	})
}
