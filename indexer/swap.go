package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/schema"
)

func (ix *Indexer) handleSwap(ctx context.Context, blk BlockHeader, ev *Event) error {
	e := ev.Swap
	pool, err := ix.store.Pool(ctx, e.PoolID)
	if err != nil {
		return err
	}
	if pool == nil {
		ix.drop(ev, "pool not found", zap.String("poolId", e.PoolID))
		return nil
	}
	ptIn, err := ix.store.PoolToken(ctx, schema.PoolTokenID(pool.ID, e.TokenIn))
	if err != nil {
		return err
	}
	ptOut, err := ix.store.PoolToken(ctx, schema.PoolTokenID(pool.ID, e.TokenOut))
	if err != nil {
		return err
	}
	if ptIn == nil || ptOut == nil {
		ix.drop(ev, "swap side not registered with pool", zap.String("poolId", pool.ID))
		return nil
	}

	tokenAmountIn := scaleAmount(e.AmountIn, ptIn.Decimals)
	tokenAmountOut := scaleAmount(e.AmountOut, ptOut.Decimals)

	// Swaps against the pool's own share token move liquidity between
	// the pool and its holders rather than trading value, so they carry
	// no volume.
	swapValueUSD := decimal.Zero
	if schema.AddressID(e.TokenIn) != pool.Address && schema.AddressID(e.TokenOut) != pool.Address {
		swapValueUSD, err = ix.pricing.ValueInUSD(ctx, tokenAmountIn, e.TokenIn)
		if err != nil {
			return err
		}
		if swapValueUSD.IsZero() {
			swapValueUSD, err = ix.pricing.ValueInUSD(ctx, tokenAmountOut, e.TokenOut)
			if err != nil {
				return err
			}
		}
	}
	swapFeesUSD := swapValueUSD.Mul(pool.SwapFee)

	pool.TotalSwapVolume = pool.TotalSwapVolume.Add(swapValueUSD)
	pool.TotalSwapFee = pool.TotalSwapFee.Add(swapFeesUSD)
	pool.SwapsCount++

	// Post-swap balances; these also feed the weighted spot price below.
	newInAmount := ptIn.Balance.Add(tokenAmountIn)
	newOutAmount := ptOut.Balance.Sub(tokenAmountOut)
	ptIn.Balance = newInAmount
	ptOut.Balance = newOutAmount

	if err := ix.store.SavePool(ctx, pool); err != nil {
		return err
	}
	if err := ix.store.SavePoolToken(ctx, ptIn); err != nil {
		return err
	}
	if err := ix.store.SavePoolToken(ctx, ptOut); err != nil {
		return err
	}

	vault, err := ix.pricing.FindOrRegisterVault(ctx)
	if err != nil {
		return err
	}
	vault.TotalSwapVolume = vault.TotalSwapVolume.Add(swapValueUSD)
	vault.TotalSwapFee = vault.TotalSwapFee.Add(swapFeesUSD)
	vault.TotalSwapCount++
	if err := ix.store.SaveVault(ctx, vault); err != nil {
		return err
	}

	for _, side := range []struct {
		addr   common.Address
		amount decimal.Decimal
	}{
		{e.TokenIn, tokenAmountIn},
		{e.TokenOut, tokenAmountOut},
	} {
		token, err := ix.getOrRegisterToken(ctx, side.addr)
		if err != nil {
			return err
		}
		token.TotalVolumeNotional = token.TotalVolumeNotional.Add(side.amount)
		token.TotalVolumeUSD = token.TotalVolumeUSD.Add(swapValueUSD)
		token.TotalSwapCount++
		if err := ix.store.SaveToken(ctx, token); err != nil {
			return err
		}
	}

	account, err := ix.getOrRegisterAccount(ctx, e.Sender)
	if err != nil {
		return err
	}
	swap := &schema.Swap{
		ID:             schema.TxID(ev.TxHash, ev.LogIndex),
		PoolID:         pool.ID,
		TokenIn:        schema.AddressID(e.TokenIn),
		TokenInSymbol:  ptIn.Symbol,
		TokenOut:       schema.AddressID(e.TokenOut),
		TokenOutSymbol: ptOut.Symbol,
		TokenAmountIn:  tokenAmountIn,
		TokenAmountOut: tokenAmountOut,
		ValueUSD:       swapValueUSD,
		AccountID:      account.ID,
		Timestamp:      blk.Time.Unix(),
		Tx:             ev.TxHash,
	}
	if err := ix.store.SaveSwap(ctx, swap); err != nil {
		return err
	}

	// Price discovery. Each swap side that is itself a pricing asset
	// quotes the other side, provided both amounts moved and the pool is
	// deep enough for its marginal prices to mean anything.
	if tokenAmountIn.IsPositive() && tokenAmountOut.IsPositive() &&
		pool.TotalLiquidity.GreaterThan(ix.network.MinPoolLiquidity) {
		if ix.pricing.IsPricingAsset(e.TokenIn) {
			price := tokenAmountIn.Div(tokenAmountOut)
			if w := spotPrice(newInAmount, ptIn.Weight, newOutAmount, ptOut.Weight); w != nil {
				price = *w
			}
			if err := ix.recordTokenPrice(ctx, blk, pool.ID, e.TokenOut, e.TokenIn, tokenAmountIn, price); err != nil {
				return err
			}
		}
		if ix.pricing.IsPricingAsset(e.TokenOut) {
			price := tokenAmountOut.Div(tokenAmountIn)
			if w := spotPrice(newOutAmount, ptOut.Weight, newInAmount, ptIn.Weight); w != nil {
				price = *w
			}
			if err := ix.recordTokenPrice(ctx, blk, pool.ID, e.TokenIn, e.TokenOut, tokenAmountOut, price); err != nil {
				return err
			}
		}
	}

	// One liquidity recomputation per swap, denominated in whichever
	// swap side ranks highest among the configured pricing assets.
	if pref, ok := ix.pricing.PreferentialPricingAsset([]common.Address{e.TokenIn, e.TokenOut}); ok {
		updated, err := ix.pricing.UpdatePoolLiquidity(ctx, pool.ID, blk.Height, pref)
		if err != nil {
			return err
		}
		if !updated {
			liquidityUpdateFailures.Inc()
		}
	}

	return ix.snapshotSwapSides(ctx, blk, pool.ID, e.TokenIn, e.TokenOut)
}

// spotPrice computes the weighted marginal price of one unit of the quote
// side in pricing-side units from post-swap balances. It returns nil when
// either weight is missing or any operand is non-positive, in which case
// the caller keeps the plain amount ratio.
func spotPrice(pricingBalance decimal.Decimal, pricingWeight *decimal.Decimal, quoteBalance decimal.Decimal, quoteWeight *decimal.Decimal) *decimal.Decimal {
	if pricingWeight == nil || quoteWeight == nil {
		return nil
	}
	if !pricingWeight.IsPositive() || !quoteWeight.IsPositive() ||
		!pricingBalance.IsPositive() || !quoteBalance.IsPositive() {
		return nil
	}
	p := pricingBalance.Div(*pricingWeight).Div(quoteBalance.Div(*quoteWeight))
	return &p
}

func (ix *Indexer) recordTokenPrice(ctx context.Context, blk BlockHeader, poolID string, asset, pricingAsset common.Address, amount, price decimal.Decimal) error {
	tp := &schema.TokenPrice{
		ID:           schema.TokenPriceID(poolID, asset, pricingAsset, blk.Height),
		PoolID:       poolID,
		Asset:        schema.AddressID(asset),
		PricingAsset: schema.AddressID(pricingAsset),
		Block:        blk.Height,
		Timestamp:    blk.Time.Unix(),
		Amount:       amount,
		Price:        price,
	}
	if err := ix.store.SaveTokenPrice(ctx, tp); err != nil {
		return err
	}
	return ix.pricing.UpdateLatestPrice(ctx, tp)
}

// snapshotSwapSides refreshes the daily pool snapshot and the token
// snapshots of both swap sides after all aggregates have settled.
func (ix *Indexer) snapshotSwapSides(ctx context.Context, blk BlockHeader, poolID string, tokens ...common.Address) error {
	pool, err := ix.store.Pool(ctx, poolID)
	if err != nil {
		return err
	}
	if pool != nil {
		if err := ix.updatePoolSnapshot(ctx, pool, blk.Time.Unix()); err != nil {
			return err
		}
	}
	for _, addr := range tokens {
		token, err := ix.store.Token(ctx, schema.AddressID(addr))
		if err != nil {
			return err
		}
		if token == nil {
			continue
		}
		if err := ix.updateTokenSnapshot(ctx, token, blk.Time.Unix()); err != nil {
			return err
		}
	}
	return nil
}
