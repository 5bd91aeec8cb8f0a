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
	"github.com/sourcegraph/conc/iter"
)

const defaultMaxLookups = 8

type ValuationServiceI interface {
	HoldingsAt(ctx context.Context, userID, guildID string, assetID *string, asOf time.Time) (map[string]decimal.Decimal, error)
	NetWorthAt(ctx context.Context, userID, guildID string, asOf time.Time) (decimal.Decimal, error)
	NetWorth(ctx context.Context, userID, guildID string) (decimal.Decimal, error)
	UnrealizedGain(ctx context.Context, userID, guildID, assetID string) (decimal.Decimal, error)
	Portfolio(ctx context.Context, userID, guildID string) (*schemas.PortfolioResponse, error)
	Leaderboard(ctx context.Context, guildID string, limit int) ([]schemas.LeaderboardEntry, error)
	VerifyChain(ctx context.Context, userID, guildID string) ([]schemas.ChainBreak, error)
}

// ValuationService is the read side of the ledger. It never writes.
type ValuationService struct {
	transactionRepository repositories.TransactionRepository
	priceRepository       repositories.PriceRepository
	userRepository        repositories.UserRepository

	defaultBalance decimal.Decimal
	maxLookups     int
	now            func() time.Time
}

func NewValuationService(transactionRepository repositories.TransactionRepository, priceRepository repositories.PriceRepository, userRepository repositories.UserRepository, defaultBalance decimal.Decimal, maxLookups int) *ValuationService {
	if maxLookups < 1 {
		maxLookups = defaultMaxLookups
	}
	return &ValuationService{
		transactionRepository: transactionRepository,
		priceRepository:       priceRepository,
		userRepository:        userRepository,
		defaultBalance:        defaultBalance,
		maxLookups:            maxLookups,
		now:                   time.Now,
	}
}

// WithClock replaces the clock used to decide what "now" is.
func (s *ValuationService) WithClock(now func() time.Time) *ValuationService {
	s.now = now
	return s
}

// liveBalance is the stored cash balance. Users that were never written hold the default balance.
func (s *ValuationService) liveBalance(ctx context.Context, userID, guildID string) (decimal.Decimal, error) {
	user, err := s.userRepository.Get(ctx, userID, guildID, nil)
	if errors.Is(err, repositories.ErrNotFound) {
		return s.defaultBalance, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}

func (s *ValuationService) HoldingsAt(ctx context.Context, userID, guildID string, assetID *string, asOf time.Time) (map[string]decimal.Decimal, error) {
	txs, err := s.transactionRepository.Query(ctx, repositories.TransactionFilter{
		UserID:  userID,
		GuildID: guildID,
		AssetID: assetID,
		Until:   &asOf,
	}, nil)
	if err != nil {
		return nil, err
	}
	return FoldHoldings(txs), nil
}

// NetWorthAt values cash plus positive holdings at asOf. Instants not before now use the live
// balance and latest prices.
func (s *ValuationService) NetWorthAt(ctx context.Context, userID, guildID string, asOf time.Time) (decimal.Decimal, error) {
	return s.netWorth(ctx, userID, guildID, asOf, !asOf.Before(s.now()))
}

// NetWorth is the live net worth used for rankings and roles.
func (s *ValuationService) NetWorth(ctx context.Context, userID, guildID string) (decimal.Decimal, error) {
	return s.netWorth(ctx, userID, guildID, s.now(), true)
}

func (s *ValuationService) netWorth(ctx context.Context, userID, guildID string, asOf time.Time, live bool) (decimal.Decimal, error) {
	balance, err := s.liveBalance(ctx, userID, guildID)
	if err != nil {
		return decimal.Zero, err
	}
	txs, err := s.transactionRepository.Query(ctx, repositories.TransactionFilter{
		UserID:  userID,
		GuildID: guildID,
		Until:   &asOf,
	}, nil)
	if err != nil {
		return decimal.Zero, err
	}

	cursor := newLedgerCursor(txs)
	cursor.advanceTo(asOf)

	worth := balance
	if !live {
		worth = cursor.cash(balance)
	}
	lookups := make([]priceLookup, 0)
	for asset, shares := range cursor.positions() {
		lookups = append(lookups, priceLookup{assetID: asset, shares: shares, at: asOf, live: live})
	}
	for _, value := range s.valueLookups(ctx, lookups) {
		worth = worth.Add(value)
	}
	return worth, nil
}

type priceLookup struct {
	assetID string
	shares  decimal.Decimal
	at      time.Time
	live    bool
}

// priceOf returns the price used for valuation. A missing or failed lookup counts as zero.
func (s *ValuationService) priceOf(ctx context.Context, assetID string, at time.Time, live bool) decimal.Decimal {
	var point *models.PricePoint
	var err error
	if live {
		point, err = s.priceRepository.Latest(ctx, assetID)
	} else {
		point, err = s.priceRepository.AtOrBefore(ctx, assetID, at)
	}
	if err != nil {
		logger := utils.LoggerFromContext(ctx).WithFields(logrus.Fields{"asset": assetID, "at": at})
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Debug("no price recorded, valuing asset at zero")
		} else {
			logger.Warnf("price lookup failed, valuing asset at zero: %v", err)
		}
		return decimal.Zero
	}
	return point.Price
}

// lookupPrices prices every lookup with bounded concurrency. Results keep the input order.
func (s *ValuationService) lookupPrices(ctx context.Context, lookups []priceLookup) []decimal.Decimal {
	if len(lookups) == 0 {
		return nil
	}
	mapper := iter.Mapper[priceLookup, decimal.Decimal]{MaxGoroutines: s.maxLookups}
	return mapper.Map(lookups, func(l *priceLookup) decimal.Decimal {
		return s.priceOf(ctx, l.assetID, l.at, l.live)
	})
}

// valueLookups returns shares times price for every lookup, in input order.
func (s *ValuationService) valueLookups(ctx context.Context, lookups []priceLookup) []decimal.Decimal {
	prices := s.lookupPrices(ctx, lookups)
	values := make([]decimal.Decimal, len(prices))
	for i, price := range prices {
		values[i] = lookups[i].shares.Mul(price)
	}
	return values
}

// UnrealizedGain is the latest price minus the price of the first buy of the asset. Without a
// buy the price of the latest transaction is the reference.
func (s *ValuationService) UnrealizedGain(ctx context.Context, userID, guildID, assetID string) (decimal.Decimal, error) {
	latest, err := s.transactionRepository.Latest(ctx, userID, guildID, assetID, nil)
	if errors.Is(err, repositories.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("%w: no transactions for %s", ErrNotFound, assetID)
	}
	if err != nil {
		return decimal.Zero, err
	}

	reference := latest.PricePerShare
	firstBuy, err := s.transactionRepository.FirstBuy(ctx, userID, guildID, assetID)
	switch {
	case err == nil:
		reference = firstBuy.PricePerShare
	case !errors.Is(err, repositories.ErrNotFound):
		return decimal.Zero, err
	}

	return s.priceOf(ctx, assetID, s.now(), true).Sub(reference), nil
}

// Portfolio lists live positions by worth, highest first. TotalWorth equals NetWorth.
func (s *ValuationService) Portfolio(ctx context.Context, userID, guildID string) (*schemas.PortfolioResponse, error) {
	balance, err := s.liveBalance(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactionRepository.Query(ctx, repositories.TransactionFilter{UserID: userID, GuildID: guildID}, nil)
	if err != nil {
		return nil, err
	}

	reference := make(map[string]decimal.Decimal)
	hasBuy := make(map[string]bool)
	for _, t := range txs {
		if !hasBuy[t.AssetID] {
			reference[t.AssetID] = t.PricePerShare
		}
		if t.Type == models.TransactionBuy {
			hasBuy[t.AssetID] = true
		}
	}

	now := s.now()
	lookups := make([]priceLookup, 0)
	for asset, shares := range FoldHoldings(txs) {
		if shares.IsPositive() {
			lookups = append(lookups, priceLookup{assetID: asset, shares: shares, at: now, live: true})
		}
	}
	prices := s.lookupPrices(ctx, lookups)

	portfolio := &schemas.PortfolioResponse{
		UserID:     userID,
		GuildID:    guildID,
		Balance:    balance,
		TotalWorth: balance,
		Positions:  make([]schemas.PortfolioPosition, 0, len(lookups)),
	}
	for i, l := range lookups {
		worth := l.shares.Mul(prices[i])
		portfolio.Positions = append(portfolio.Positions, schemas.PortfolioPosition{
			AssetID:    l.assetID,
			Shares:     l.shares,
			Price:      prices[i],
			Worth:      worth,
			Difference: prices[i].Sub(reference[l.assetID]),
		})
		portfolio.TotalWorth = portfolio.TotalWorth.Add(worth)
	}
	sort.Slice(portfolio.Positions, func(i, j int) bool {
		a, b := portfolio.Positions[i], portfolio.Positions[j]
		if !a.Worth.Equal(b.Worth) {
			return a.Worth.GreaterThan(b.Worth)
		}
		return a.AssetID < b.AssetID
	})
	return portfolio, nil
}

type rankedWorth struct {
	userID string
	worth  decimal.Decimal
	err    error
}

// Leaderboard ranks the guild's users by live net worth.
func (s *ValuationService) Leaderboard(ctx context.Context, guildID string, limit int) ([]schemas.LeaderboardEntry, error) {
	users, err := s.userRepository.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}

	mapper := iter.Mapper[models.User, rankedWorth]{MaxGoroutines: s.maxLookups}
	ranked := mapper.Map(users, func(u *models.User) rankedWorth {
		worth, err := s.NetWorth(ctx, u.ID, guildID)
		return rankedWorth{userID: u.ID, worth: worth, err: err}
	})
	for _, r := range ranked {
		if r.err != nil {
			return nil, fmt.Errorf("valuing %s: %w", r.userID, r.err)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].worth.Equal(ranked[j].worth) {
			return ranked[i].worth.GreaterThan(ranked[j].worth)
		}
		return ranked[i].userID < ranked[j].userID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	entries := make([]schemas.LeaderboardEntry, 0, len(ranked))
	for i, r := range ranked {
		entries = append(entries, schemas.LeaderboardEntry{Rank: i + 1, UserID: r.userID, NetWorth: r.worth})
	}
	return entries, nil
}

// VerifyChain checks that every asset's ledger chains share snapshots and never goes negative.
// Breaks point at data corruption and are logged as errors.
func (s *ValuationService) VerifyChain(ctx context.Context, userID, guildID string) ([]schemas.ChainBreak, error) {
	txs, err := s.transactionRepository.Query(ctx, repositories.TransactionFilter{UserID: userID, GuildID: guildID}, nil)
	if err != nil {
		return nil, err
	}

	logger := utils.LoggerFromContext(ctx)
	previous := make(map[string]decimal.Decimal)
	breaks := make([]schemas.ChainBreak, 0)
	for _, t := range txs {
		expected, seen := previous[t.AssetID]
		if !seen {
			expected = decimal.Zero
		}
		if !expected.Equal(t.SharesBefore) {
			breaks = append(breaks, schemas.ChainBreak{
				AssetID: t.AssetID, TransactionID: t.ID, Expected: expected, Actual: t.SharesBefore,
				Reason: "sharesBefore does not match previous sharesAfter",
			})
		}
		if !applyTrade(t.SharesBefore, t).Equal(t.SharesAfter) {
			breaks = append(breaks, schemas.ChainBreak{
				AssetID: t.AssetID, TransactionID: t.ID, Expected: applyTrade(t.SharesBefore, t), Actual: t.SharesAfter,
				Reason: "sharesAfter does not follow from the trade",
			})
		}
		if t.SharesAfter.IsNegative() {
			breaks = append(breaks, schemas.ChainBreak{
				AssetID: t.AssetID, TransactionID: t.ID, Expected: decimal.Zero, Actual: t.SharesAfter,
				Reason: "negative holdings",
			})
		}
		previous[t.AssetID] = t.SharesAfter
	}

	for _, b := range breaks {
		logger.WithFields(logrus.Fields{
			"user": userID, "guild": guildID, "asset": b.AssetID, "transaction": b.TransactionID,
		}).Errorf("ledger chain broken: %s (expected %s, got %s)", b.Reason, b.Expected, b.Actual)
	}
	return breaks, nil
}
