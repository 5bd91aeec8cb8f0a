package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockbot/src/models"
	"stockbot/src/schemas"
	"stockbot/src/services"
	"stockbot/src/utils/render"
)

func (c *Controller) SearchAssets(ctx context.Context, query string, limit int) ([]models.Asset, error) {
	return c.Services.Assets.SearchAssets(ctx, query, limit)
}

// GetAssetPrice returns the latest stored price, or the last one at or before at.
func (c *Controller) GetAssetPrice(ctx context.Context, assetID string, at *time.Time) (*models.PricePoint, error) {
	if at != nil {
		return c.Services.Prices.PriceAt(ctx, assetID, at.UTC())
	}
	return c.Services.Prices.LatestPrice(ctx, assetID)
}

// GetAsset returns the asset with its latest price, if one has been recorded.
func (c *Controller) GetAsset(ctx context.Context, assetID string) (*schemas.AssetDetailResponse, error) {
	asset, err := c.Services.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	res := &schemas.AssetDetailResponse{ID: asset.ID, Name: asset.Name, Description: asset.Description}

	point, err := c.Services.Prices.LatestPrice(ctx, asset.ID)
	switch {
	case err == nil:
		res.Price, res.PricedAt = &point.Price, &point.Timestamp
	case !errors.Is(err, services.ErrPriceNotFound):
		return nil, err
	}
	return res, nil
}

// GetAssetChart renders the asset's price history as an HTML line chart.
func (c *Controller) GetAssetChart(ctx context.Context, assetID string) ([]byte, error) {
	asset, err := c.Services.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	history, err := c.Services.Prices.History(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	points := make([]schemas.SamplePoint, 0, len(history))
	for _, p := range history {
		points = append(points, schemas.SamplePoint{Value: p.Price, Timestamp: p.Timestamp})
	}
	return render.LineChart(fmt.Sprintf("%s price", asset.ID), asset.Name, points)
}
