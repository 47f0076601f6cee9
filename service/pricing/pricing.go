package pricing

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/config"
	"github.com/koyo-finance/exchange-backend/schema"
	"github.com/koyo-finance/exchange-backend/service/store"
)

// Service derives token prices and pool liquidity valuations from the
// latest-price edges accumulated in the store. All lookups are
// best-effort: an asset with no discovered price route values to zero
// until a route appears.
type Service struct {
	network config.Network
	store   store.Store
	logger  *zap.Logger
}

func NewService(network config.Network, st store.Store, logger *zap.Logger) *Service {
	return &Service{network, st, logger}
}

func (s *Service) IsUSDStable(asset common.Address) bool {
	for _, a := range s.network.USDStableAssets {
		if a == asset {
			return true
		}
	}
	return false
}

func (s *Service) IsPricingAsset(asset common.Address) bool {
	for _, a := range s.network.PricingAssets {
		if a == asset {
			return true
		}
	}
	return false
}

// PreferentialPricingAsset picks the candidate that appears earliest in
// the configured pricing-asset list. The order is semantically
// significant: it decides which price route wins when several are
// available.
func (s *Service) PreferentialPricingAsset(candidates []common.Address) (common.Address, bool) {
	for _, a := range s.network.PricingAssets {
		for _, c := range candidates {
			if a == c {
				return a, true
			}
		}
	}
	return common.Address{}, false
}

// ValueInETH converts a value denominated in asset into the reference
// asset (wrapped native currency). A missing price edge yields zero,
// which is the normal "not yet observed" outcome rather than an error.
func (s *Service) ValueInETH(ctx context.Context, value decimal.Decimal, asset common.Address) (decimal.Decimal, error) {
	lp, err := s.store.LatestPrice(ctx, schema.LatestPriceID(asset, s.network.ReferenceAsset))
	if err != nil {
		return decimal.Zero, err
	}
	if lp == nil {
		return decimal.Zero, nil
	}
	return value.Mul(lp.Price), nil
}

// ValueInUSD converts a value denominated in asset into USD. Stable
// assets convert 1:1. Other assets are routed through the first stable
// asset an edge exists for, in configured order; failing that, through
// the reference asset. The reference-asset hop converts via the stable
// scan only, never back through ValueInUSD, so resolution always
// terminates after at most one hop.
func (s *Service) ValueInUSD(ctx context.Context, value decimal.Decimal, asset common.Address) (decimal.Decimal, error) {
	if s.IsUSDStable(asset) {
		return value, nil
	}
	usd, err := s.usdViaStables(ctx, value, asset)
	if err != nil || !usd.IsZero() {
		return usd, err
	}
	ethValue, err := s.ValueInETH(ctx, value, asset)
	if err != nil {
		return decimal.Zero, err
	}
	if ethValue.IsPositive() {
		return s.usdViaStables(ctx, ethValue, s.network.ReferenceAsset)
	}
	return decimal.Zero, nil
}

// usdViaStables scans the stable-asset list in configured order and
// converts through the first asset a price edge exists for. First match
// wins; routes are never averaged.
func (s *Service) usdViaStables(ctx context.Context, value decimal.Decimal, asset common.Address) (decimal.Decimal, error) {
	for _, stable := range s.network.USDStableAssets {
		lp, err := s.store.LatestPrice(ctx, schema.LatestPriceID(asset, stable))
		if err != nil {
			return decimal.Zero, err
		}
		if lp != nil {
			return value.Mul(lp.Price), nil
		}
	}
	return decimal.Zero, nil
}
