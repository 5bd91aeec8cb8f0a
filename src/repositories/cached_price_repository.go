package repositories

import (
	"context"
	"time"

	"stockbot/src/models"
	"stockbot/src/utils"
)

// PriceCache is the key-value store behind the cached price repository.
type PriceCache interface {
	Get(ctx context.Context, key string, result interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// cachedPriceRepo serves Latest from the cache and invalidates it on Insert.
// Cache failures fall through to the wrapped repository and are logged.
type cachedPriceRepo struct {
	PriceRepository
	cache PriceCache
	ttl   time.Duration
}

func NewCachedPriceRepository(inner PriceRepository, cache PriceCache, ttl time.Duration) PriceRepository {
	return &cachedPriceRepo{PriceRepository: inner, cache: cache, ttl: ttl}
}

func latestPriceKey(assetID string) string {
	return "price:latest:" + assetID
}

func (r *cachedPriceRepo) Latest(ctx context.Context, assetID string) (*models.PricePoint, error) {
	var cached models.PricePoint
	if err := r.cache.Get(ctx, latestPriceKey(assetID), &cached); err == nil {
		return &cached, nil
	}

	p, err := r.PriceRepository.Latest(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, latestPriceKey(assetID), p, r.ttl); err != nil {
		utils.LoggerFromContext(ctx).WithField("asset", assetID).Warnf("caching latest price: %v", err)
	}
	return p, nil
}

func (r *cachedPriceRepo) Insert(ctx context.Context, p *models.PricePoint) error {
	if err := r.PriceRepository.Insert(ctx, p); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, latestPriceKey(p.AssetID)); err != nil {
		utils.LoggerFromContext(ctx).WithField("asset", p.AssetID).Warnf("invalidating cached price, stale for up to %s: %v", r.ttl, err)
	}
	return nil
}
