package services

import (
	"context"
	"fmt"
	"time"

	"stockbot/src/repositories"
	"stockbot/src/schemas"
	"stockbot/src/utils"
)

type SamplerServiceI interface {
	WorthSeries(ctx context.Context, userID, guildID, period string) ([]schemas.SamplePoint, error)
	BalanceSeries(ctx context.Context, userID, guildID, period string) ([]schemas.SamplePoint, error)
}

// SamplerService builds worth and balance time series for charts.
type SamplerService struct {
	valuation *ValuationService
	location  *time.Location
}

// NewSamplerService samples in the market timezone loc, which anchors the one day window.
func NewSamplerService(valuation *ValuationService, loc *time.Location) *SamplerService {
	if loc == nil {
		loc = time.UTC
	}
	return &SamplerService{valuation: valuation, location: loc}
}

// WorthSeries samples net worth over period. The last point is always at now.
func (s *SamplerService) WorthSeries(ctx context.Context, userID, guildID, period string) ([]schemas.SamplePoint, error) {
	return s.sample(ctx, userID, guildID, period, true)
}

// BalanceSeries samples the cash balance only.
func (s *SamplerService) BalanceSeries(ctx context.Context, userID, guildID, period string) ([]schemas.SamplePoint, error) {
	return s.sample(ctx, userID, guildID, period, false)
}

func (s *SamplerService) sample(ctx context.Context, userID, guildID, rawPeriod string, withHoldings bool) ([]schemas.SamplePoint, error) {
	period, err := utils.ParsePeriod(rawPeriod)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}

	v := s.valuation
	now := v.now().UTC()
	balance, err := v.liveBalance(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	txs, err := v.transactionRepository.Query(ctx, repositories.TransactionFilter{
		UserID:  userID,
		GuildID: guildID,
		Until:   &now,
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return []schemas.SamplePoint{{Value: balance, Timestamp: now}}, nil
	}

	start, end := period.Window(now, s.location)
	instants, err := utils.GenerateDates(start, end, period.Step())
	if err != nil {
		return nil, err
	}
	if len(instants) == 0 || instants[len(instants)-1].Before(now) {
		instants = append(instants, now)
	}

	points := make([]schemas.SamplePoint, len(instants))
	var lookups []priceLookup
	var owners []int

	cursor := newLedgerCursor(txs)
	for i, at := range instants {
		cursor.advanceTo(at)
		live := !at.Before(now)

		cash := balance
		if !live {
			cash = cursor.cash(balance)
		}
		points[i] = schemas.SamplePoint{Value: cash, Timestamp: at}

		if !withHoldings {
			continue
		}
		for asset, shares := range cursor.positions() {
			lookups = append(lookups, priceLookup{assetID: asset, shares: shares, at: at, live: live})
			owners = append(owners, i)
		}
	}

	for k, value := range v.valueLookups(ctx, lookups) {
		i := owners[k]
		points[i].Value = points[i].Value.Add(value)
	}
	return points, nil
}
