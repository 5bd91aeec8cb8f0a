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

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	shareDecimals     = 8
	writeAttempts     = 3
	writeRetryBackoff = 20 * time.Millisecond
)

// TradeRequest is a fully priced trade.
type TradeRequest struct {
	UserID        string
	GuildID       string
	AssetID       string
	Type          models.TransactionType
	Shares        decimal.Decimal
	PricePerShare decimal.Decimal
}

// OrderRequest is a trade priced from the latest market price.
type OrderRequest struct {
	UserID  string
	GuildID string
	AssetID string
	Amount  decimal.Decimal
	Mode    schemas.TradeMode
}

type TradeServiceI interface {
	EnsureUser(ctx context.Context, userID, guildID string) (*models.User, error)
	RecordTrade(ctx context.Context, req TradeRequest) (*models.Transaction, error)
	Buy(ctx context.Context, req OrderRequest) (*models.Transaction, error)
	BuyAll(ctx context.Context, userID, guildID, assetID string) (*models.Transaction, error)
	Sell(ctx context.Context, req OrderRequest) (*models.Transaction, error)
	Liquidate(ctx context.Context, userID, guildID string, assetID *string) ([]models.Transaction, error)
	Donate(ctx context.Context, guildID, fromUserID, toUserID string, amount decimal.Decimal) (*models.User, *models.User, error)
	AdjustBalance(ctx context.Context, userID, guildID string, mode schemas.AdjustMode, amount decimal.Decimal) (*models.User, error)
	AdjustShares(ctx context.Context, userID, guildID, assetID string, mode schemas.AdjustMode, amount decimal.Decimal) (*models.Transaction, error)
	History(ctx context.Context, userID, guildID string, assetID *string) ([]models.Transaction, error)
}

// TradeService is the only writer of ledger rows and balances. Every write runs in one database
// transaction guarded by the user's row version and is retried when another write won the race.
type TradeService struct {
	transactor            repositories.Transactor
	transactionRepository repositories.TransactionRepository
	userRepository        repositories.UserRepository
	priceRepository       repositories.PriceRepository
	assetRepository       repositories.AssetRepository

	roles          RoleAssigner
	defaultBalance decimal.Decimal
	now            func() time.Time
	backoff        func() retry.Backoff
}

func NewTradeService(transactor repositories.Transactor, transactionRepository repositories.TransactionRepository, userRepository repositories.UserRepository, priceRepository repositories.PriceRepository, assetRepository repositories.AssetRepository, roles RoleAssigner, defaultBalance decimal.Decimal) *TradeService {
	return &TradeService{
		transactor:            transactor,
		transactionRepository: transactionRepository,
		userRepository:        userRepository,
		priceRepository:       priceRepository,
		assetRepository:       assetRepository,
		roles:                 roles,
		defaultBalance:        defaultBalance,
		now:                   time.Now,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(writeAttempts-1, retry.NewExponential(writeRetryBackoff))
		},
	}
}

// WithClock replaces the clock that stamps ledger rows.
func (s *TradeService) WithClock(now func() time.Time) *TradeService {
	s.now = now
	return s
}

// EnsureUser is the explicit get-or-create of a member's account.
func (s *TradeService) EnsureUser(ctx context.Context, userID, guildID string) (*models.User, error) {
	return s.userRepository.Ensure(ctx, userID, guildID, s.defaultBalance, nil)
}

func (s *TradeService) History(ctx context.Context, userID, guildID string, assetID *string) ([]models.Transaction, error) {
	return s.transactionRepository.Query(ctx, repositories.TransactionFilter{UserID: userID, GuildID: guildID, AssetID: assetID}, nil)
}

// write runs fn in a transaction, retrying when a balance update lost an optimistic race.
func (s *TradeService) write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		err := s.transactor.WithinTransaction(ctx, fn)
		if errors.Is(err, repositories.ErrStaleVersion) {
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, repositories.ErrStaleVersion) {
		return fmt.Errorf("%w: %v", ErrConcurrentUpdate, err)
	}
	return err
}

func (s *TradeService) reevaluate(ctx context.Context, guildID string, userIDs ...string) {
	if s.roles == nil {
		return
	}
	logger := utils.LoggerFromContext(ctx)
	for _, userID := range userIDs {
		if err := s.roles.AssignRoles(ctx, userID, guildID); err != nil {
			logger.WithFields(logrus.Fields{"user": userID, "guild": guildID}).
				Warnf("error while re-evaluating roles: %v", err)
		}
	}
}

func validateTrade(req TradeRequest) error {
	if !req.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTradeType, req.Type)
	}
	if !req.Shares.IsPositive() {
		return fmt.Errorf("%w: shares %s", ErrInvalidAmount, req.Shares)
	}
	if !req.PricePerShare.IsPositive() {
		return fmt.Errorf("%w: price %s", ErrInvalidAmount, req.PricePerShare)
	}
	return nil
}

// RecordTrade appends one ledger row and moves the balance atomically, then re-evaluates roles.
// Funds and holdings are checked inside the transaction, so a rejected trade writes nothing.
func (s *TradeService) RecordTrade(ctx context.Context, req TradeRequest) (*models.Transaction, error) {
	if err := validateTrade(req); err != nil {
		return nil, err
	}

	var recorded *models.Transaction
	err := s.write(ctx, func(tx *gorm.DB) error {
		row, err := s.appendTrade(ctx, tx, req)
		recorded = row
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user": req.UserID, "guild": req.GuildID, "asset": req.AssetID,
		"type": req.Type, "shares": req.Shares.String(), "price": req.PricePerShare.String(),
	}).Info("trade recorded")

	s.reevaluate(ctx, req.GuildID, req.UserID)
	return recorded, nil
}

// position reads the member's shares of assetID and the timestamp the next row gets.
func (s *TradeService) position(ctx context.Context, tx *gorm.DB, userID, guildID, assetID string) (decimal.Decimal, time.Time, error) {
	timestamp := s.now().UTC()
	latest, err := s.transactionRepository.Latest(ctx, userID, guildID, assetID, tx)
	switch {
	case err == nil:
		// Keep the asset's rows in order even if the clock steps back.
		if timestamp.Before(latest.Timestamp) {
			timestamp = latest.Timestamp
		}
		return latest.SharesAfter, timestamp, nil
	case errors.Is(err, repositories.ErrNotFound):
		return decimal.Zero, timestamp, nil
	default:
		return decimal.Zero, time.Time{}, err
	}
}

// appendRow inserts row and moves the balance to row.BalanceAfter under the user's version.
func (s *TradeService) appendRow(ctx context.Context, tx *gorm.DB, user *models.User, row *models.Transaction) error {
	if err := s.transactionRepository.Insert(ctx, row, tx); err != nil {
		return err
	}
	return s.userRepository.UpdateBalance(ctx, user, row.BalanceAfter, tx)
}

func (s *TradeService) appendTrade(ctx context.Context, tx *gorm.DB, req TradeRequest) (*models.Transaction, error) {
	user, err := s.userRepository.Ensure(ctx, req.UserID, req.GuildID, s.defaultBalance, tx)
	if err != nil {
		return nil, err
	}
	sharesBefore, timestamp, err := s.position(ctx, tx, req.UserID, req.GuildID, req.AssetID)
	if err != nil {
		return nil, err
	}

	value := req.Shares.Mul(req.PricePerShare)
	var balanceAfter, sharesAfter decimal.Decimal
	switch req.Type {
	case models.TransactionBuy:
		if value.GreaterThan(user.Balance) {
			return nil, fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, value, user.Balance)
		}
		balanceAfter = user.Balance.Sub(value)
		sharesAfter = sharesBefore.Add(req.Shares)
	case models.TransactionSell:
		if req.Shares.GreaterThan(sharesBefore) {
			return nil, fmt.Errorf("%w: selling %s of %s, holding %s", ErrInsufficientShares, req.Shares, req.AssetID, sharesBefore)
		}
		balanceAfter = user.Balance.Add(value)
		sharesAfter = sharesBefore.Sub(req.Shares)
	}

	row := &models.Transaction{
		UserID:        req.UserID,
		GuildID:       req.GuildID,
		AssetID:       req.AssetID,
		Type:          req.Type,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
		BalanceBefore: user.Balance,
		BalanceAfter:  balanceAfter,
		SharesBefore:  sharesBefore,
		SharesAfter:   sharesAfter,
		Timestamp:     timestamp,
	}
	if err := s.appendRow(ctx, tx, user, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *TradeService) latestPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if _, err := s.assetRepository.GetByID(ctx, assetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
		}
		return decimal.Zero, err
	}
	point, err := s.priceRepository.Latest(ctx, assetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrPriceNotFound, assetID)
		}
		return decimal.Zero, err
	}
	if !point.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrPriceNotFound, assetID)
	}
	return point.Price, nil
}

// sharesFor converts an order amount to shares. Cash amounts are rounded down so the cost never
// exceeds the amount.
func sharesFor(amount decimal.Decimal, mode schemas.TradeMode, price decimal.Decimal) decimal.Decimal {
	if mode != schemas.TradeModeMoney {
		return amount
	}
	step := decimal.New(1, -shareDecimals)
	shares := amount.DivRound(price, shareDecimals+4).Truncate(shareDecimals)
	for shares.IsPositive() && shares.Mul(price).GreaterThan(amount) {
		shares = shares.Sub(step)
	}
	return shares
}

func (s *TradeService) order(ctx context.Context, req OrderRequest, tradeType models.TransactionType) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, req.Amount)
	}
	price, err := s.latestPrice(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}
	shares := sharesFor(req.Amount, req.Mode, price)
	if !shares.IsPositive() {
		return nil, fmt.Errorf("%w: %s buys no shares at %s", ErrInvalidAmount, req.Amount, price)
	}
	return s.RecordTrade(ctx, TradeRequest{
		UserID:        req.UserID,
		GuildID:       req.GuildID,
		AssetID:       req.AssetID,
		Type:          tradeType,
		Shares:        shares,
		PricePerShare: price,
	})
}

// Buy purchases shares, or as many shares as the cash amount pays for, at the latest price.
func (s *TradeService) Buy(ctx context.Context, req OrderRequest) (*models.Transaction, error) {
	return s.order(ctx, req, models.TransactionBuy)
}

// Sell sells shares, or the shares worth the cash amount, at the latest price.
func (s *TradeService) Sell(ctx context.Context, req OrderRequest) (*models.Transaction, error) {
	return s.order(ctx, req, models.TransactionSell)
}

// BuyAll spends the whole balance on one asset.
func (s *TradeService) BuyAll(ctx context.Context, userID, guildID, assetID string) (*models.Transaction, error) {
	user, err := s.EnsureUser(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	if !user.Balance.IsPositive() {
		return nil, fmt.Errorf("%w: balance is %s", ErrInsufficientFunds, user.Balance)
	}
	order := OrderRequest{UserID: userID, GuildID: guildID, AssetID: assetID, Amount: user.Balance, Mode: schemas.TradeModeMoney}
	return s.Buy(ctx, order)
}

// Liquidate sells every share of assetID, or of every held asset when assetID is nil, in one
// transaction. Assets without a price are skipped when liquidating everything.
func (s *TradeService) Liquidate(ctx context.Context, userID, guildID string, assetID *string) ([]models.Transaction, error) {
	txs, err := s.transactionRepository.Query(ctx, repositories.TransactionFilter{UserID: userID, GuildID: guildID, AssetID: assetID}, nil)
	if err != nil {
		return nil, err
	}
	held := make([]string, 0)
	for asset, shares := range FoldHoldings(txs) {
		if shares.IsPositive() {
			held = append(held, asset)
		}
	}
	if len(held) == 0 {
		return nil, fmt.Errorf("%w: nothing to liquidate", ErrInsufficientShares)
	}
	sort.Strings(held)

	logger := utils.LoggerFromContext(ctx)
	prices := make(map[string]decimal.Decimal, len(held))
	for _, asset := range held {
		price, err := s.latestPrice(ctx, asset)
		if err != nil {
			unpriced := errors.Is(err, ErrPriceNotFound) || errors.Is(err, ErrNotFound)
			if assetID != nil || !unpriced {
				return nil, err
			}
			logger.WithField("asset", asset).Warn("skipping unpriced asset during liquidation")
			continue
		}
		prices[asset] = price
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: no held asset has a price", ErrPriceNotFound)
	}

	var rows []models.Transaction
	err = s.write(ctx, func(tx *gorm.DB) error {
		rows = rows[:0]
		for _, asset := range held {
			price, ok := prices[asset]
			if !ok {
				continue
			}
			latest, err := s.transactionRepository.Latest(ctx, userID, guildID, asset, tx)
			if err != nil {
				return err
			}
			if !latest.SharesAfter.IsPositive() {
				continue
			}
			row, err := s.appendTrade(ctx, tx, TradeRequest{
				UserID:        userID,
				GuildID:       guildID,
				AssetID:       asset,
				Type:          models.TransactionSell,
				Shares:        latest.SharesAfter,
				PricePerShare: price,
			})
			if err != nil {
				return err
			}
			rows = append(rows, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: nothing to liquidate", ErrInsufficientShares)
	}

	s.reevaluate(ctx, guildID, userID)
	return rows, nil
}

// Donate moves cash between two members of a guild. No ledger row is written.
func (s *TradeService) Donate(ctx context.Context, guildID, fromUserID, toUserID string, amount decimal.Decimal) (*models.User, *models.User, error) {
	if !amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if fromUserID == toUserID {
		return nil, nil, fmt.Errorf("%w: cannot donate to yourself", ErrInvalidAmount)
	}

	var sender, receiver *models.User
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		if sender, err = s.userRepository.Ensure(ctx, fromUserID, guildID, s.defaultBalance, tx); err != nil {
			return err
		}
		if receiver, err = s.userRepository.Ensure(ctx, toUserID, guildID, s.defaultBalance, tx); err != nil {
			return err
		}
		if amount.GreaterThan(sender.Balance) {
			return fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, amount, sender.Balance)
		}
		if err := s.userRepository.UpdateBalance(ctx, sender, sender.Balance.Sub(amount), tx); err != nil {
			return err
		}
		return s.userRepository.UpdateBalance(ctx, receiver, receiver.Balance.Add(amount), tx)
	})
	if err != nil {
		return nil, nil, err
	}

	s.reevaluate(ctx, guildID, fromUserID, toUserID)
	return sender, receiver, nil
}

// adjusted applies an admin adjustment of amount to current. Removing more than there is clamps at
// zero when clamp is set and fails otherwise.
func adjusted(current decimal.Decimal, mode schemas.AdjustMode, amount decimal.Decimal, clamp bool) (decimal.Decimal, error) {
	switch mode {
	case schemas.AdjustSet:
		if amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
		}
		return amount, nil
	case schemas.AdjustAdd, schemas.AdjustRemove:
		if !amount.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
		}
		if mode == schemas.AdjustAdd {
			return current.Add(amount), nil
		}
		if amount.GreaterThan(current) {
			if clamp {
				return decimal.Zero, nil
			}
			return decimal.Zero, fmt.Errorf("%w: removing %s from %s", ErrInsufficientFunds, amount, current)
		}
		return current.Sub(amount), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown adjustment %q", ErrInvalidAmount, mode)
	}
}

// AdjustBalance sets, raises or lowers a member's cash balance. No ledger row is written.
func (s *TradeService) AdjustBalance(ctx context.Context, userID, guildID string, mode schemas.AdjustMode, amount decimal.Decimal) (*models.User, error) {
	if _, err := adjusted(decimal.Zero, mode, amount, true); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		if user, err = s.userRepository.Ensure(ctx, userID, guildID, s.defaultBalance, tx); err != nil {
			return err
		}
		balance, err := adjusted(user.Balance, mode, amount, false)
		if err != nil {
			return err
		}
		return s.userRepository.UpdateBalance(ctx, user, balance, tx)
	})
	if err != nil {
		return nil, err
	}

	s.reevaluate(ctx, guildID, userID)
	return user, nil
}

// AdjustShares sets, raises or lowers a member's position without moving cash. The change is written
// as one ledger row at the latest price. Removing more than is held clamps at zero.
func (s *TradeService) AdjustShares(ctx context.Context, userID, guildID, assetID string, mode schemas.AdjustMode, amount decimal.Decimal) (*models.Transaction, error) {
	if _, err := adjusted(decimal.Zero, mode, amount, true); err != nil {
		return nil, err
	}
	price, err := s.latestPrice(ctx, assetID)
	if err != nil {
		return nil, err
	}

	var row *models.Transaction
	err = s.write(ctx, func(tx *gorm.DB) error {
		user, err := s.userRepository.Ensure(ctx, userID, guildID, s.defaultBalance, tx)
		if err != nil {
			return err
		}
		sharesBefore, timestamp, err := s.position(ctx, tx, userID, guildID, assetID)
		if err != nil {
			return err
		}
		sharesAfter, err := adjusted(sharesBefore, mode, amount, true)
		if err != nil {
			return err
		}
		if sharesAfter.Equal(sharesBefore) {
			return fmt.Errorf("%w: %s already holds %s of %s", ErrInvalidAmount, userID, sharesBefore, assetID)
		}

		tradeType := models.TransactionBuy
		if sharesAfter.LessThan(sharesBefore) {
			tradeType = models.TransactionSell
		}
		row = &models.Transaction{
			UserID:        userID,
			GuildID:       guildID,
			AssetID:       assetID,
			Type:          tradeType,
			Shares:        sharesAfter.Sub(sharesBefore).Abs(),
			PricePerShare: price,
			BalanceBefore: user.Balance,
			BalanceAfter:  user.Balance,
			SharesBefore:  sharesBefore,
			SharesAfter:   sharesAfter,
			Timestamp:     timestamp,
		}
		return s.appendRow(ctx, tx, user, row)
	})
	if err != nil {
		return nil, err
	}

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user": userID, "guild": guildID, "asset": assetID,
		"mode": mode, "before": row.SharesBefore.String(), "after": row.SharesAfter.String(),
	}).Info("shares adjusted")

	s.reevaluate(ctx, guildID, userID)
	return row, nil
}
