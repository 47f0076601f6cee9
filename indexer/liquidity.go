package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/schema"
)

func (ix *Indexer) handlePoolBalanceChanged(ctx context.Context, blk BlockHeader, ev *Event) error {
	e := ev.PoolBalanceChanged
	if len(e.Deltas) == 0 {
		return nil
	}
	kind := schema.JoinExitTypeExit
	if sumDeltas(e.Deltas).Sign() > 0 {
		kind = schema.JoinExitTypeJoin
	}

	pool, err := ix.store.Pool(ctx, e.PoolID)
	if err != nil {
		return err
	}
	if pool == nil {
		ix.drop(ev, "pool not found", zap.String("poolId", e.PoolID))
		return nil
	}
	if len(e.Deltas) != len(pool.TokensList) {
		ix.drop(ev, "delta count does not match registered tokens",
			zap.String("poolId", pool.ID),
			zap.Int("deltas", len(e.Deltas)), zap.Int("tokens", len(pool.TokensList)))
		return nil
	}

	account, err := ix.getOrRegisterAccount(ctx, e.LiquidityProvider)
	if err != nil {
		return err
	}

	// Deltas are signed from the pool's perspective: positive entries
	// flow in. Exits are recorded with positive magnitudes.
	amounts := make([]decimal.Decimal, len(e.Deltas))
	for i, tokenAddress := range pool.TokensList {
		pt, err := ix.getOrRegisterPoolToken(ctx, pool.ID, common.HexToAddress(tokenAddress))
		if err != nil {
			return err
		}
		amount := scaleAmount(e.Deltas[i], pt.Decimals)

		pt.Balance = pt.Balance.Add(amount)
		if err := ix.store.SavePoolToken(ctx, pt); err != nil {
			return err
		}

		token, err := ix.getOrRegisterToken(ctx, common.HexToAddress(tokenAddress))
		if err != nil {
			return err
		}
		// USD conversion runs on the magnitude: the reference-asset
		// fallback treats non-positive values as unroutable, so a signed
		// exit amount would convert to zero and never unwind the total.
		valueUSD, err := ix.pricing.ValueInUSD(ctx, amount.Abs(), common.HexToAddress(tokenAddress))
		if err != nil {
			return err
		}
		if amount.IsNegative() {
			valueUSD = valueUSD.Neg()
		}
		token.TotalBalanceNotional = token.TotalBalanceNotional.Add(amount)
		token.TotalBalanceUSD = token.TotalBalanceUSD.Add(valueUSD)
		if err := ix.store.SaveToken(ctx, token); err != nil {
			return err
		}

		if kind == schema.JoinExitTypeExit {
			amount = amount.Neg()
		}
		amounts[i] = amount
	}

	je := &schema.JoinExit{
		ID:        schema.TxID(ev.TxHash, ev.LogIndex),
		Type:      kind,
		PoolID:    pool.ID,
		AccountID: account.ID,
		Amounts:   amounts,
		Timestamp: blk.Time.Unix(),
		Tx:        ev.TxHash,
	}
	if err := ix.store.SaveJoinExit(ctx, je); err != nil {
		return err
	}

	// Balances moved, so the pool needs revaluing. Candidate pricing
	// assets are tried in registration order until one values the pool
	// consistently.
	for _, tokenAddress := range pool.TokensList {
		addr := common.HexToAddress(tokenAddress)
		if !ix.pricing.IsPricingAsset(addr) {
			continue
		}
		updated, err := ix.pricing.UpdatePoolLiquidity(ctx, pool.ID, blk.Height, addr)
		if err != nil {
			return err
		}
		if updated {
			break
		}
		liquidityUpdateFailures.Inc()
	}

	pool, err = ix.store.Pool(ctx, pool.ID)
	if err != nil {
		return err
	}
	return ix.updatePoolSnapshot(ctx, pool, blk.Time.Unix())
}

func (ix *Indexer) handleInternalBalanceChanged(ctx context.Context, ev *Event) error {
	e := ev.InternalBalanceChanged
	account, err := ix.getOrRegisterAccount(ctx, e.User)
	if err != nil {
		return err
	}
	token, err := ix.getOrRegisterToken(ctx, e.Token)
	if err != nil {
		return err
	}
	balance, err := ix.getOrRegisterAccountInternalBalance(ctx, account.ID, e.Token)
	if err != nil {
		return err
	}
	balance.Balance = balance.Balance.Add(scaleAmount(e.Delta, token.Decimals))
	return ix.store.SaveAccountInternalBalance(ctx, balance)
}
