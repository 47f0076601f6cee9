package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/config"
	"github.com/koyo-finance/exchange-backend/schema"
)

func (ix *Indexer) handlePoolRegistered(ctx context.Context, blk BlockHeader, ev *Event) error {
	e := ev.PoolRegistered
	existing, err := ix.store.Pool(ctx, e.PoolID)
	if err != nil {
		return err
	}
	if existing != nil {
		ix.drop(ev, "pool already registered", zap.String("poolId", e.PoolID))
		return nil
	}

	pool := &schema.Pool{
		ID:           e.PoolID,
		Address:      schema.AddressID(e.PoolAddress),
		PoolType:     e.PoolType,
		StrategyType: e.Specialization,
		SwapEnabled:  true,
		SwapFee:      scaleAmount(e.SwapFee, config.BPTDecimals),
		CreateTime:   blk.Time.Unix(),
		Tx:           ev.TxHash,
	}
	if e.Owner != (common.Address{}) {
		account, err := ix.getOrRegisterAccount(ctx, e.Owner)
		if err != nil {
			return err
		}
		pool.Owner = account.ID
	}
	if name, err := ix.metadata.Name(ctx, e.PoolAddress); err == nil {
		pool.Name = name
	}
	if symbol, err := ix.metadata.Symbol(ctx, e.PoolAddress); err == nil {
		pool.Symbol = symbol
	}
	if err := ix.store.SavePool(ctx, pool); err != nil {
		return err
	}

	vault, err := ix.pricing.FindOrRegisterVault(ctx)
	if err != nil {
		return err
	}
	vault.PoolCount++
	if err := ix.store.SaveVault(ctx, vault); err != nil {
		return err
	}

	ix.logger.Info("pool registered",
		zap.String("poolId", e.PoolID), zap.String("address", pool.Address))
	return nil
}

func (ix *Indexer) handleTokensRegistered(ctx context.Context, ev *Event) error {
	e := ev.TokensRegistered
	pool, err := ix.store.Pool(ctx, e.PoolID)
	if err != nil {
		return err
	}
	if pool == nil {
		ix.drop(ev, "pool not found", zap.String("poolId", e.PoolID))
		return nil
	}

	for _, addr := range e.Tokens {
		id := schema.AddressID(addr)
		if !containsString(pool.TokensList, id) {
			pool.TokensList = append(pool.TokensList, id)
		}
		if _, err := ix.getOrRegisterPoolToken(ctx, pool.ID, addr); err != nil {
			return err
		}
	}
	if err := ix.store.SavePool(ctx, pool); err != nil {
		return err
	}
	return ix.updatePoolWeights(ctx, pool)
}

// updatePoolWeights refreshes per-token normalized weights from the pool
// contract. Pools without weights (the call reverts) are left untouched;
// their spot prices fall back to the unweighted amount ratio.
func (ix *Indexer) updatePoolWeights(ctx context.Context, pool *schema.Pool) error {
	weights, err := ix.metadata.NormalizedWeights(ctx, common.HexToAddress(pool.Address))
	if err != nil {
		ix.logger.Debug("pool weights unavailable",
			zap.String("poolId", pool.ID), zap.Error(err))
		return nil
	}
	if len(weights) != len(pool.TokensList) {
		ix.logger.Warn("weight count does not match registered tokens",
			zap.String("poolId", pool.ID),
			zap.Int("weights", len(weights)), zap.Int("tokens", len(pool.TokensList)))
		return nil
	}

	totalWeight := decimal.Zero
	for i, tokenAddress := range pool.TokensList {
		pt, err := ix.store.PoolToken(ctx, pool.ID+"-"+tokenAddress)
		if err != nil {
			return err
		}
		if pt == nil {
			continue
		}
		w := weights[i]
		pt.Weight = &w
		if err := ix.store.SavePoolToken(ctx, pt); err != nil {
			return err
		}
		totalWeight = totalWeight.Add(w)
	}
	pool.TotalWeight = totalWeight
	return ix.store.SavePool(ctx, pool)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
