package indexer

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/koyo-finance/exchange-backend/schema"
)

func TestHandlePoolRegistered(t *testing.T) {
	ix, st, md := newTestIndexer(t)
	ctx := context.Background()
	md.setToken(testPoolAddress, "Koyo Pool", "KPT", 18)
	registerPool(t, ix, tokenX, frax)

	pool, err := st.Pool(ctx, testPoolID)
	require.NoError(t, err)
	require.NotNil(t, pool)
	require.Equal(t, schema.AddressID(testPoolAddress), pool.Address)
	require.Equal(t, "Koyo Pool", pool.Name)
	require.Equal(t, "KPT", pool.Symbol)
	require.True(t, pool.SwapEnabled)
	require.True(t, pool.SwapFee.Equal(decimal.RequireFromString("0.003")), "got %s", pool.SwapFee)
	require.Equal(t, []string{schema.AddressID(tokenX), schema.AddressID(frax)}, pool.TokensList)
	require.Equal(t, blockAt(1).Time.Unix(), pool.CreateTime)
	require.Equal(t, schema.PoolTypeWeighted, pool.PoolType)
	require.Equal(t, schema.AddressID(poolOwner), pool.Owner)

	owner, err := st.Account(ctx, schema.AddressID(poolOwner))
	require.NoError(t, err)
	require.NotNil(t, owner)

	vault, err := st.Vault(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), vault.PoolCount)
}

func TestHandlePoolRegisteredWithoutOwner(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	ctx := context.Background()

	require.NoError(t, ix.handleEvent(ctx, blockAt(1), &Event{
		Type:   EventTypePoolRegistered,
		TxHash: "0xtx-register",
		PoolRegistered: &PoolRegisteredEvent{
			PoolID:      testPoolID,
			PoolAddress: testPoolAddress,
			SwapFee:     rawAmount("0.003", 18),
		},
	}))

	pool, err := st.Pool(ctx, testPoolID)
	require.NoError(t, err)
	require.Empty(t, pool.Owner)
}

func TestHandlePoolRegisteredDuplicateIgnored(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	ctx := context.Background()
	registerPool(t, ix, tokenX, frax)

	require.NoError(t, ix.handleEvent(ctx, blockAt(2), &Event{
		Type:   EventTypePoolRegistered,
		TxHash: "0xtx-duplicate",
		PoolRegistered: &PoolRegisteredEvent{
			PoolID:      testPoolID,
			PoolAddress: testPoolAddress,
			SwapFee:     rawAmount("0.01", 18),
		},
	}))

	pool, err := st.Pool(ctx, testPoolID)
	require.NoError(t, err)
	require.True(t, pool.SwapFee.Equal(decimal.RequireFromString("0.003")))
	vault, err := st.Vault(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), vault.PoolCount)
}

func TestHandleTokensRegisteredCreatesPoolTokens(t *testing.T) {
	ix, st, md := newTestIndexer(t)
	ctx := context.Background()
	md.setToken(usdc, "USD Coin", "USDC", 6)
	registerPool(t, ix, usdc, frax)

	pt, err := st.PoolToken(ctx, schema.PoolTokenID(testPoolID, usdc))
	require.NoError(t, err)
	require.NotNil(t, pt)
	require.Equal(t, "USDC", pt.Symbol)
	require.Equal(t, 6, pt.Decimals)
	require.True(t, pt.Balance.IsZero())
	require.True(t, pt.PriceRate.Equal(decimal.NewFromInt(1)))

	token, err := st.Token(ctx, schema.AddressID(usdc))
	require.NoError(t, err)
	require.NotNil(t, token)
	require.Equal(t, 6, token.Decimals)
}

func TestHandleTokensRegisteredUnknownPoolDropped(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	require.NoError(t, ix.handleEvent(context.Background(), blockAt(1), &Event{
		Type: EventTypeTokensRegistered,
		TokensRegistered: &TokensRegisteredEvent{
			PoolID: "0xmissing",
			Tokens: []common.Address{frax},
		},
	}))
	pt, err := st.PoolToken(context.Background(), schema.PoolTokenID("0xmissing", frax))
	require.NoError(t, err)
	require.Nil(t, pt)
}

func TestUpdatePoolWeights(t *testing.T) {
	ix, st, md := newTestIndexer(t)
	ctx := context.Background()
	md.weights[testPoolAddress] = []decimal.Decimal{
		decimal.RequireFromString("0.25"),
		decimal.RequireFromString("0.75"),
	}
	registerPool(t, ix, tokenX, frax)

	pool, err := st.Pool(ctx, testPoolID)
	require.NoError(t, err)
	require.True(t, pool.TotalWeight.Equal(decimal.NewFromInt(1)), "got %s", pool.TotalWeight)

	ptX, err := st.PoolToken(ctx, schema.PoolTokenID(testPoolID, tokenX))
	require.NoError(t, err)
	require.NotNil(t, ptX.Weight)
	require.True(t, ptX.Weight.Equal(decimal.RequireFromString("0.25")))
	ptF, err := st.PoolToken(ctx, schema.PoolTokenID(testPoolID, frax))
	require.NoError(t, err)
	require.NotNil(t, ptF.Weight)
	require.True(t, ptF.Weight.Equal(decimal.RequireFromString("0.75")))
}

func TestUpdatePoolWeightsUnavailableLeavesPoolUnweighted(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	ctx := context.Background()
	registerPool(t, ix, tokenX, frax)

	pool, err := st.Pool(ctx, testPoolID)
	require.NoError(t, err)
	require.True(t, pool.TotalWeight.IsZero())
	pt, err := st.PoolToken(ctx, schema.PoolTokenID(testPoolID, tokenX))
	require.NoError(t, err)
	require.Nil(t, pt.Weight)
}

func TestUpdatePoolWeightsCountMismatchIgnored(t *testing.T) {
	ix, st, md := newTestIndexer(t)
	ctx := context.Background()
	md.weights[testPoolAddress] = []decimal.Decimal{decimal.NewFromInt(1)}
	registerPool(t, ix, tokenX, frax)

	pool, err := st.Pool(ctx, testPoolID)
	require.NoError(t, err)
	require.True(t, pool.TotalWeight.IsZero())
}
