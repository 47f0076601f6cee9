package pricing

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/schema"
)

// FindOrRegisterVault returns the singleton vault aggregate, creating it
// with zeroed totals on first use.
func (s *Service) FindOrRegisterVault(ctx context.Context) (*schema.Vault, error) {
	v, err := s.store.Vault(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = &schema.Vault{
			ID:      schema.VaultID,
			Address: schema.AddressID(s.network.VaultAddress),
		}
	}
	return v, nil
}

// UpdateLatestPrice upserts the directed (asset, pricingAsset) price edge
// from a fresh observation. The edge is always overwritten: "latest" is
// defined purely by event arrival order, which is monotonic upstream.
func (s *Service) UpdateLatestPrice(ctx context.Context, tp *schema.TokenPrice) error {
	id := tp.Asset + "-" + tp.PricingAsset
	lp := &schema.LatestPrice{
		ID:           id,
		Asset:        tp.Asset,
		PricingAsset: tp.PricingAsset,
		Price:        tp.Price,
		Block:        tp.Block,
		PoolID:       tp.PoolID,
	}
	if err := s.store.SaveLatestPrice(ctx, lp); err != nil {
		return fmt.Errorf("save latest price: %w", err)
	}

	token, err := s.store.Token(ctx, tp.Asset)
	if err != nil {
		return err
	}
	if token == nil {
		token = &schema.Token{ID: tp.Asset, Address: tp.Asset}
	}
	token.LatestPriceID = lp.ID
	if err := s.store.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// UpdatePoolLiquidity recomputes a pool's total liquidity in USD from its
// current balances and the latest-price edges, denominating intermediate
// sums in pricingAsset. It reports false without mutating anything when
// the pool cannot be valued: the pool is missing, has fewer than two
// tokens, or the pricing asset produces an inconsistent valuation.
// Callers iterate candidate pricing assets and stop at the first success.
func (s *Service) UpdatePoolLiquidity(ctx context.Context, poolID string, block int64, pricingAsset common.Address) (bool, error) {
	pool, err := s.store.Pool(ctx, poolID)
	if err != nil {
		return false, err
	}
	if pool == nil {
		s.logger.Warn("pool not found in UpdatePoolLiquidity", zap.String("poolId", poolID))
		return false, nil
	}
	if len(pool.TokensList) < 2 {
		return false, nil
	}

	poolValue := decimal.Zero
	pricingAssetID := schema.AddressID(pricingAsset)
	for _, tokenAddress := range pool.TokensList {
		pt, err := s.store.PoolToken(ctx, poolID+"-"+tokenAddress)
		if err != nil {
			return false, err
		}
		if pt == nil {
			continue
		}
		if tokenAddress == pricingAssetID {
			poolValue = poolValue.Add(pt.Balance)
			continue
		}
		// Liquidity can only be reported for assets that have traded
		// against the pricing asset; the rest contribute zero until a
		// route is discovered.
		lp, err := s.store.LatestPrice(ctx, tokenAddress+"-"+pricingAssetID)
		if err != nil {
			return false, err
		}
		if lp != nil && lp.Price.IsPositive() {
			poolValue = poolValue.Add(lp.Price.Mul(pt.Balance))
		}
	}

	newPoolLiquidity, err := s.ValueInUSD(ctx, poolValue, pricingAsset)
	if err != nil {
		return false, err
	}

	// A non-empty pool valuing to zero USD (or the reverse) means the
	// pricing asset itself has no trustworthy USD route. Commit nothing
	// and report failure so the caller can try the next candidate.
	if poolValue.IsPositive() != newPoolLiquidity.IsPositive() {
		return false, nil
	}

	shareValue := decimal.Zero
	if pool.TotalShares.IsPositive() {
		shareValue = poolValue.Div(pool.TotalShares)
	}
	phl := &schema.PoolHistoricalLiquidity{
		ID:              schema.PoolHistoricalLiquidityID(poolID, pricingAsset, block),
		PoolID:          poolID,
		PricingAsset:    pricingAssetID,
		Block:           block,
		PoolTotalShares: pool.TotalShares,
		PoolLiquidity:   poolValue,
		PoolShareValue:  shareValue,
	}
	if err := s.store.SavePoolHistoricalLiquidity(ctx, phl); err != nil {
		return false, fmt.Errorf("save pool historical liquidity: %w", err)
	}

	liquidityChange := newPoolLiquidity.Sub(pool.TotalLiquidity)
	pool.TotalLiquidity = newPoolLiquidity
	if err := s.store.SavePool(ctx, pool); err != nil {
		return false, fmt.Errorf("save pool: %w", err)
	}

	vault, err := s.FindOrRegisterVault(ctx)
	if err != nil {
		return false, err
	}
	vault.TotalLiquidity = vault.TotalLiquidity.Add(liquidityChange)
	if err := s.store.SaveVault(ctx, vault); err != nil {
		return false, fmt.Errorf("save vault: %w", err)
	}
	return true, nil
}
