package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/koyo-finance/exchange-backend/schema"
)

// Snapshots are daily rollups keyed by (entity, UTC day). Every update
// within a day overwrites the same record, so each snapshot ends up
// holding the entity's state as of its last event that day.

func (ix *Indexer) updatePoolSnapshot(ctx context.Context, pool *schema.Pool, ts int64) error {
	amounts := make([]decimal.Decimal, len(pool.TokensList))
	for i, tokenAddress := range pool.TokensList {
		pt, err := ix.store.PoolToken(ctx, pool.ID+"-"+tokenAddress)
		if err != nil {
			return err
		}
		if pt != nil {
			amounts[i] = pt.Balance
		}
	}
	return ix.store.SavePoolSnapshot(ctx, &schema.PoolSnapshot{
		ID:              schema.PoolSnapshotID(pool.ID, ts),
		PoolID:          pool.ID,
		Amounts:         amounts,
		TotalShares:     pool.TotalShares,
		TotalLiquidity:  pool.TotalLiquidity,
		TotalSwapVolume: pool.TotalSwapVolume,
		TotalSwapFee:    pool.TotalSwapFee,
		SwapsCount:      pool.SwapsCount,
		HoldersCount:    pool.HoldersCount,
		Timestamp:       schema.DayTimestamp(ts),
	})
}

func (ix *Indexer) updateTokenSnapshot(ctx context.Context, token *schema.Token, ts int64) error {
	return ix.store.SaveTokenSnapshot(ctx, &schema.TokenSnapshot{
		ID:                   schema.TokenSnapshotID(common.HexToAddress(token.Address), ts),
		TokenID:              token.ID,
		TotalBalanceUSD:      token.TotalBalanceUSD,
		TotalBalanceNotional: token.TotalBalanceNotional,
		TotalVolumeUSD:       token.TotalVolumeUSD,
		TotalVolumeNotional:  token.TotalVolumeNotional,
		TotalSwapCount:       token.TotalSwapCount,
		Timestamp:            schema.DayTimestamp(ts),
	})
}
