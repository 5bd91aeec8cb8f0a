package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockbot/src/models"
	"stockbot/src/repositories"
	"stockbot/src/utils"
)

const (
	assetCacheTTL      = 10 * time.Minute
	defaultSearchLimit = 25
)

type AssetServiceI interface {
	EnsureAsset(ctx context.Context, symbol string) (*models.Asset, error)
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	ListAssets(ctx context.Context) ([]models.Asset, error)
	SearchAssets(ctx context.Context, query string, limit int) ([]models.Asset, error)
}

// AssetService keeps the catalog of tradable tickers.
type AssetService struct {
	assetRepository repositories.AssetRepository
	market          MarketDataClient
	cache           *utils.Cache[[]models.Asset]
}

func NewAssetService(assetRepository repositories.AssetRepository, market MarketDataClient) *AssetService {
	return &AssetService{
		assetRepository: assetRepository,
		market:          market,
		cache:           utils.NewCache[[]models.Asset](),
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// EnsureAsset returns the asset, creating it from market data the first time it is seen.
func (s *AssetService) EnsureAsset(ctx context.Context, symbol string) (*models.Asset, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrNotFound)
	}

	asset, err := s.assetRepository.GetByID(ctx, symbol)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	info, err := s.market.GetStockInfo(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("creating asset %s: %w", symbol, err)
	}
	asset = &models.Asset{ID: symbol, Name: info.Name, Description: info.Description}
	if err := s.assetRepository.Create(ctx, asset); err != nil {
		return nil, err
	}
	s.cache.Clear()
	return asset, nil
}

func (s *AssetService) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	asset, err := s.assetRepository.GetByID(ctx, normalizeSymbol(id))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: asset %s", ErrNotFound, id)
	}
	return asset, err
}

func (s *AssetService) ListAssets(ctx context.Context) ([]models.Asset, error) {
	if assets, ok := s.cache.Get(); ok {
		return assets, nil
	}
	assets, err := s.assetRepository.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(assets, assetCacheTTL)
	return assets, nil
}

// SearchAssets matches the query against symbols and names, case-insensitively. Symbol prefix
// matches come first.
func (s *AssetService) SearchAssets(ctx context.Context, query string, limit int) ([]models.Asset, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	assets, err := s.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var prefixed, contained []models.Asset
	for _, a := range assets {
		id, name := strings.ToLower(a.ID), strings.ToLower(a.Name)
		switch {
		case strings.HasPrefix(id, q):
			prefixed = append(prefixed, a)
		case strings.Contains(id, q) || strings.Contains(name, q):
			contained = append(contained, a)
		}
	}
	matches := append(prefixed, contained...)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []models.Asset{}
	}
	return matches, nil
}
