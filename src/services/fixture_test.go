package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stockbot/src/clients/yfinance"
	"stockbot/src/config"
	"stockbot/src/database/testdb"
	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type mutatorMock struct {
	mock.Mock
}

func (m *mutatorMock) AddRole(ctx context.Context, userID, guildID, roleID string) error {
	return m.Called(ctx, userID, guildID, roleID).Error(0)
}

func (m *mutatorMock) RemoveRoles(ctx context.Context, userID, guildID string, roleIDs []string) error {
	return m.Called(ctx, userID, guildID, roleIDs).Error(0)
}

type marketFake struct {
	mu     sync.Mutex
	quotes map[string]decimal.Decimal
	names  map[string]string
}

func newMarketFake() *marketFake {
	return &marketFake{quotes: map[string]decimal.Decimal{}, names: map[string]string{}}
}

func (m *marketFake) GetStockInfo(_ context.Context, symbol string) (*yfinance.StockInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.names[symbol]
	if !ok {
		return nil, &yfinance.FetchError{Op: "stock info", Symbol: symbol, StatusCode: 404, Err: errors.New("unknown symbol")}
	}
	return &yfinance.StockInfo{Symbol: symbol, Name: name, Description: "Stock information for " + symbol}, nil
}

func (m *marketFake) GetLatestQuote(_ context.Context, symbol string) (*yfinance.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	price, ok := m.quotes[symbol]
	if !ok {
		return nil, &yfinance.FetchError{Op: "stock price", Symbol: symbol, StatusCode: 200, Err: yfinance.ErrNoPriceData}
	}
	return &yfinance.Quote{Symbol: symbol, Price: price, Timestamp: t0}, nil
}

type fixture struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB
	now time.Time

	svc     *services.Services
	market  *marketFake
	mutator *mutatorMock

	assetRepo repositories.AssetRepository
	priceRepo repositories.PriceRepository
	userRepo  repositories.UserRepository
	txRepo    repositories.TransactionRepository
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Valuation.DefaultBalance = 1000
	cfg.Valuation.MaxConcurrentLookups = 4
	cfg.Market.Timezone = "America/New_York"
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		db:        db,
		now:       t0,
		market:    newMarketFake(),
		mutator:   &mutatorMock{},
		assetRepo: repositories.NewAssetRepository(db),
		priceRepo: repositories.NewPriceRepository(db),
		userRepo:  repositories.NewUserRepository(db),
		txRepo:    repositories.NewTransactionRepository(db),
	}
	f.svc = services.New(testConfig(), services.Dependencies{
		DB:      db,
		Market:  f.market,
		Mutator: f.mutator,
	})
	clock := func() time.Time { return f.now }
	f.svc.Valuation.WithClock(clock)
	f.svc.Trades.WithClock(clock)
	f.svc.Prices.WithClock(clock)
	return f
}

// price registers the asset if needed and records a price observed at at.
func (f *fixture) price(asset, price string, at time.Time) {
	f.t.Helper()
	require.NoError(f.t, f.assetRepo.Create(f.ctx, &models.Asset{ID: asset, Name: asset, Description: asset}))
	require.NoError(f.t, f.priceRepo.Insert(f.ctx, &models.PricePoint{AssetID: asset, Price: dec(price), Timestamp: at}))
}

// trade records a priced trade for user in "guild" at instant at.
func (f *fixture) trade(user, asset string, tradeType models.TransactionType, shares, price string, at time.Time) *models.Transaction {
	f.t.Helper()
	f.now = at
	row, err := f.svc.Trades.RecordTrade(f.ctx, services.TradeRequest{
		UserID:        user,
		GuildID:       "guild",
		AssetID:       asset,
		Type:          tradeType,
		Shares:        dec(shares),
		PricePerShare: dec(price),
	})
	require.NoError(f.t, err)
	return row
}

func (f *fixture) rowCount() int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(&models.Transaction{}).Count(&n).Error)
	return n
}

func (f *fixture) balance(user string) decimal.Decimal {
	f.t.Helper()
	u, err := f.userRepo.Get(f.ctx, user, "guild", nil)
	require.NoError(f.t, err)
	return u.Balance
}
