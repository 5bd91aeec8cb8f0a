package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Market          MarketConfig         `mapstructure:"market"`
	Valuation       ValuationConfig      `mapstructure:"valuation"`
	Logging         LoggingConfig        `mapstructure:"logging"`
	Secrets         SecretsConfig        `mapstructure:"secrets"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type ServiceType `mapstructure:"type"`
	Port string      `mapstructure:"port"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Driver           string `mapstructure:"driver"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
}

// RedisConfig is optional. An empty Host disables the latest-price cache.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Database int           `mapstructure:"database"`
	TLS      bool          `mapstructure:"tls"`
	PriceTTL time.Duration `mapstructure:"priceTtl"`
}

type ExternalClientConfig struct {
	YFinance YFinanceConfig `mapstructure:"yfinance"`
	Discord  DiscordConfig  `mapstructure:"discord"`
}

type YFinanceConfig struct {
	BaseURL     string        `mapstructure:"baseUrl"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
	BaseBackoff time.Duration `mapstructure:"baseBackoff"`
}

type DiscordConfig struct {
	Token     string `mapstructure:"token"`
	BotUserID string `mapstructure:"botUserId"`
}

type MarketConfig struct {
	Timezone    string `mapstructure:"timezone"`
	RefreshCron string `mapstructure:"refreshCron"`
	SymbolsFile string `mapstructure:"symbolsFile"`
}

type ValuationConfig struct {
	DefaultBalance       float64 `mapstructure:"defaultBalance"`
	MaxConcurrentLookups int     `mapstructure:"maxConcurrentLookups"`
	LeaderboardSize      int     `mapstructure:"leaderboardSize"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	ToFile   bool   `mapstructure:"toFile"`
	FilePath string `mapstructure:"filePath"`
}

type SecretsConfig struct {
	AWSRegion       string `mapstructure:"awsRegion"`
	DiscordTokenARN string `mapstructure:"discordTokenArn"`
}

// Location resolves the market timezone, falling back to UTC when it is unknown.
func (m MarketConfig) Location() *time.Location {
	if m.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.type", string(API))
	v.SetDefault("service.port", "8000")
	v.SetDefault("databases.sql.driver", "postgres")
	v.SetDefault("databases.sql.host", "localhost")
	v.SetDefault("databases.sql.port", "5432")
	v.SetDefault("databases.sql.username", "")
	v.SetDefault("databases.sql.password", "")
	v.SetDefault("databases.sql.database", "stockbot")
	v.SetDefault("databases.sql.connection_string", "")
	v.SetDefault("databases.redis.host", "")
	v.SetDefault("databases.redis.port", "6379")
	v.SetDefault("databases.redis.priceTtl", 5*time.Minute)
	v.SetDefault("externalClients.yfinance.baseUrl", "https://yfinancerestapi.com")
	v.SetDefault("externalClients.yfinance.timeout", 10*time.Second)
	v.SetDefault("externalClients.yfinance.maxAttempts", 3)
	v.SetDefault("externalClients.yfinance.baseBackoff", 200*time.Millisecond)
	v.SetDefault("externalClients.discord.token", "")
	v.SetDefault("externalClients.discord.botUserId", "")
	v.SetDefault("market.timezone", "America/New_York")
	v.SetDefault("market.refreshCron", "0,30 9-16 * * 1-5")
	v.SetDefault("valuation.defaultBalance", 1000)
	v.SetDefault("valuation.maxConcurrentLookups", 8)
	v.SetDefault("valuation.leaderboardSize", 10)
	v.SetDefault("logging.level", "info")
	v.SetDefault("secrets.awsRegion", "")
	v.SetDefault("secrets.discordTokenArn", "")
}

// LoadConfig reads settings/appsettings.yaml, merges appsettings.<env>.yaml when env is set and
// lets STOCKBOT_* environment variables override any key.
func LoadConfig(path string, env string) (*Config, error) {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("appsettings")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("STOCKBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	if env != "" {
		v.SetConfigName("appsettings." + strings.ToLower(env))
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("merging %s config: %w", env, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
