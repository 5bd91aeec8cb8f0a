package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/schemas"
	"stockbot/src/utils"

	"github.com/sirupsen/logrus"
)

type PriceServiceI interface {
	RefreshPrices(ctx context.Context, symbols []string) (*schemas.PriceRefreshResult, error)
	LatestPrice(ctx context.Context, assetID string) (*models.PricePoint, error)
	PriceAt(ctx context.Context, assetID string, at time.Time) (*models.PricePoint, error)
	History(ctx context.Context, assetID string) ([]models.PricePoint, error)
}

type PriceService struct {
	priceRepository repositories.PriceRepository
	assets          *AssetService
	market          MarketDataClient
	now             func() time.Time
}

func NewPriceService(priceRepository repositories.PriceRepository, assets *AssetService, market MarketDataClient) *PriceService {
	return &PriceService{
		priceRepository: priceRepository,
		assets:          assets,
		market:          market,
		now:             time.Now,
	}
}

// WithClock replaces the clock that stamps observed prices.
func (s *PriceService) WithClock(now func() time.Time) *PriceService {
	s.now = now
	return s
}

// RefreshPrices records the latest close of every symbol at the time it was observed. Symbols
// that fail are logged and skipped.
func (s *PriceService) RefreshPrices(ctx context.Context, symbols []string) (*schemas.PriceRefreshResult, error) {
	logger := utils.LoggerFromContext(ctx)
	logger.WithField("symbols", len(symbols)).Info("starting price update")

	result := &schemas.PriceRefreshResult{Requested: len(symbols), Failed: []string{}}
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.refresh(ctx, symbol); err != nil {
			result.Failed = append(result.Failed, symbol)
			logger.WithField("asset", symbol).Errorf("error while updating price: %v", err)
			continue
		}
		result.Updated++
	}

	logger.WithFields(logrus.Fields{"updated": result.Updated, "failed": len(result.Failed)}).Info("completed price update")
	return result, nil
}

func (s *PriceService) refresh(ctx context.Context, symbol string) error {
	asset, err := s.assets.EnsureAsset(ctx, symbol)
	if err != nil {
		return err
	}
	quote, err := s.market.GetLatestQuote(ctx, asset.ID)
	if err != nil {
		return err
	}
	point := &models.PricePoint{AssetID: asset.ID, Price: quote.Price, Timestamp: s.now().UTC()}
	if err := s.priceRepository.Insert(ctx, point); err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).WithField("asset", asset.ID).Debugf("updated price: %s", quote.Price.StringFixed(2))
	return nil
}

func (s *PriceService) LatestPrice(ctx context.Context, assetID string) (*models.PricePoint, error) {
	point, err := s.priceRepository.Latest(ctx, normalizeSymbol(assetID))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPriceNotFound, assetID)
	}
	return point, err
}

func (s *PriceService) PriceAt(ctx context.Context, assetID string, at time.Time) (*models.PricePoint, error) {
	point, err := s.priceRepository.AtOrBefore(ctx, normalizeSymbol(assetID), at)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s at %s", ErrPriceNotFound, assetID, at.Format(time.RFC3339))
	}
	return point, err
}

// History returns every recorded price of the asset, oldest first.
func (s *PriceService) History(ctx context.Context, assetID string) ([]models.PricePoint, error) {
	return s.priceRepository.History(ctx, normalizeSymbol(assetID))
}
