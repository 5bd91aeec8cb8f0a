package services

import (
	"context"
	"fmt"

	"stockbot/src/clients/discord"
	"stockbot/src/clients/yfinance"
	"stockbot/src/config"
	"stockbot/src/repositories"
	redis_utils "stockbot/src/utils/redis"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services groups every domain service built from one configuration.
type Services struct {
	Valuation *ValuationService
	Sampler   *SamplerService
	Roles     *RoleService
	Trades    *TradeService
	Assets    *AssetService
	Prices    *PriceService

	closers []func() error
}

// Dependencies are the external collaborators behind the services. Nil Mutator and Members
// disable role mutation and member listing; a nil PriceCache disables price caching.
type Dependencies struct {
	DB         *gorm.DB
	Market     MarketDataClient
	Mutator    RoleMutator
	Members    MemberDirectory
	BotUserID  string
	PriceCache repositories.PriceCache
}

// New wires the services on top of deps.
func New(cfg *config.Config, deps Dependencies) *Services {
	defaultBalance := decimal.NewFromFloat(cfg.Valuation.DefaultBalance)

	transactionRepository := repositories.NewTransactionRepository(deps.DB)
	userRepository := repositories.NewUserRepository(deps.DB)
	assetRepository := repositories.NewAssetRepository(deps.DB)
	roleConfigRepository := repositories.NewRoleConfigRepository(deps.DB)
	priceRepository := repositories.NewPriceRepository(deps.DB)
	if deps.PriceCache != nil {
		priceRepository = repositories.NewCachedPriceRepository(priceRepository, deps.PriceCache, cfg.Databases.Redis.PriceTTL)
	}

	valuation := NewValuationService(transactionRepository, priceRepository, userRepository, defaultBalance, cfg.Valuation.MaxConcurrentLookups)
	roles := NewRoleService(roleConfigRepository, userRepository, valuation, deps.Mutator, deps.Members, deps.BotUserID, defaultBalance)
	assets := NewAssetService(assetRepository, deps.Market)

	return &Services{
		Valuation: valuation,
		Sampler:   NewSamplerService(valuation, cfg.Market.Location()),
		Roles:     roles,
		Trades:    NewTradeService(repositories.NewTransactor(deps.DB), transactionRepository, userRepository, priceRepository, assetRepository, roles, defaultBalance),
		Assets:    assets,
		Prices:    NewPriceService(priceRepository, assets, deps.Market),
	}
}

// NewFromConfig builds the real collaborators (market data, Discord, Redis) and wires the services.
func NewFromConfig(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (*Services, error) {
	deps := Dependencies{
		DB:        db,
		Market:    yfinance.NewClient(cfg),
		BotUserID: cfg.ExternalClients.Discord.BotUserID,
	}
	var closers []func() error

	if cfg.ExternalClients.Discord.Token != "" {
		client, err := discord.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		deps.Mutator = client
		deps.Members = client
		deps.BotUserID = client.BotUserID()
	} else {
		logger.Warn("discord token not configured, role changes will not be applied")
	}

	if cfg.Databases.Redis.Host != "" {
		handler, err := redis_utils.NewRedisHandler(ctx, cfg.Databases.Redis)
		if err != nil {
			return nil, fmt.Errorf("setting up price cache: %w", err)
		}
		deps.PriceCache = handler
		closers = append(closers, handler.Close)
	}

	s := New(cfg, deps)
	s.closers = closers
	return s, nil
}

// Close releases the collaborators opened by NewFromConfig.
func (s *Services) Close() error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
