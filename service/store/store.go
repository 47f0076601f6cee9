package store

import (
	"context"

	"github.com/koyo-finance/exchange-backend/schema"
)

// Store is the durable entity store the indexing engine writes through.
// Loads return (nil, nil) when the entity does not exist; only transport
// or decoding problems surface as errors. Saves are upserts keyed by the
// entity's id.
type Store interface {
	LatestBlockHeight(ctx context.Context) (int64, error)
	SetLatestBlockHeight(ctx context.Context, height int64) error

	Token(ctx context.Context, id string) (*schema.Token, error)
	SaveToken(ctx context.Context, t *schema.Token) error

	PoolToken(ctx context.Context, id string) (*schema.PoolToken, error)
	SavePoolToken(ctx context.Context, pt *schema.PoolToken) error

	Pool(ctx context.Context, id string) (*schema.Pool, error)
	SavePool(ctx context.Context, p *schema.Pool) error
	Pools(ctx context.Context) ([]schema.Pool, error)

	LatestPrice(ctx context.Context, id string) (*schema.LatestPrice, error)
	SaveLatestPrice(ctx context.Context, lp *schema.LatestPrice) error
	LatestPrices(ctx context.Context) ([]schema.LatestPrice, error)

	SaveTokenPrice(ctx context.Context, tp *schema.TokenPrice) error
	SavePoolHistoricalLiquidity(ctx context.Context, phl *schema.PoolHistoricalLiquidity) error

	Vault(ctx context.Context) (*schema.Vault, error)
	SaveVault(ctx context.Context, v *schema.Vault) error

	Account(ctx context.Context, id string) (*schema.Account, error)
	SaveAccount(ctx context.Context, a *schema.Account) error

	AccountInternalBalance(ctx context.Context, id string) (*schema.AccountInternalBalance, error)
	SaveAccountInternalBalance(ctx context.Context, b *schema.AccountInternalBalance) error

	SaveSwap(ctx context.Context, s *schema.Swap) error
	SaveJoinExit(ctx context.Context, je *schema.JoinExit) error
	SavePoolSnapshot(ctx context.Context, ps *schema.PoolSnapshot) error
	SaveTokenSnapshot(ctx context.Context, ts *schema.TokenSnapshot) error
}
