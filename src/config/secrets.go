package config

import "fmt"

type SecretGetter interface {
	GetSecretValue(secretID string) (string, error)
}

// ResolveSecrets replaces configured secret references with their values.
// Values already present in the config win over the secret store.
func ResolveSecrets(cfg *Config, secrets SecretGetter) error {
	if cfg.Secrets.DiscordTokenARN == "" || cfg.ExternalClients.Discord.Token != "" {
		return nil
	}
	token, err := secrets.GetSecretValue(cfg.Secrets.DiscordTokenARN)
	if err != nil {
		return fmt.Errorf("resolving discord token: %w", err)
	}
	cfg.ExternalClients.Discord.Token = token
	return nil
}
