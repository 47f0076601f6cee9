package indexer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/koyo-finance/exchange-backend/schema"
)

func balanceChangedEvent(logIndex uint, deltas ...*BigInt) *Event {
	return &Event{
		Type:     EventTypePoolBalanceChanged,
		LogIndex: logIndex,
		TxHash:   "0xtx-join",
		PoolBalanceChanged: &PoolBalanceChangedEvent{
			PoolID:            testPoolID,
			LiquidityProvider: trader,
			Deltas:            deltas,
		},
	}
}

func TestHandlePoolBalanceChangedJoin(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	ctx := context.Background()
	registerPool(t, ix, frax, usdc)

	require.NoError(t, ix.handleEvent(ctx, blockAt(5), balanceChangedEvent(0,
		rawAmount("100", 18), rawAmount("200", 18))))

	jes := st.JoinExits()
	require.Len(t, jes, 1)
	je := jes[0]
	require.Equal(t, schema.JoinExitTypeJoin, je.Type)
	require.Equal(t, schema.AddressID(trader), je.AccountID)
	require.Len(t, je.Amounts, 2)
	require.True(t, je.Amounts[0].Equal(decimal.NewFromInt(100)))
	require.True(t, je.Amounts[1].Equal(decimal.NewFromInt(200)))

	ptFrax, err := st.PoolToken(ctx, schema.PoolTokenID(testPoolID, frax))
	require.NoError(t, err)
	require.True(t, ptFrax.Balance.Equal(decimal.NewFromInt(100)))
	ptUSDC, err := st.PoolToken(ctx, schema.PoolTokenID(testPoolID, usdc))
	require.NoError(t, err)
	require.True(t, ptUSDC.Balance.Equal(decimal.NewFromInt(200)))

	// The join revalues the pool on frax, the first candidate pricing
	// asset. No usdc price edge exists yet, so only the frax balance
	// counts.
	pool, err := st.Pool(ctx, testPoolID)
	require.NoError(t, err)
	require.True(t, pool.TotalLiquidity.Equal(decimal.NewFromInt(100)), "got %s", pool.TotalLiquidity)

	token, err := st.Token(ctx, schema.AddressID(frax))
	require.NoError(t, err)
	require.True(t, token.TotalBalanceNotional.Equal(decimal.NewFromInt(100)))
	require.True(t, token.TotalBalanceUSD.Equal(decimal.NewFromInt(100)))
}

func TestHandlePoolBalanceChangedExit(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	ctx := context.Background()
	registerPool(t, ix, frax, usdc)

	require.NoError(t, ix.handleEvent(ctx, blockAt(5), balanceChangedEvent(0,
		rawAmount("100", 18), rawAmount("200", 18))))
	require.NoError(t, ix.handleEvent(ctx, blockAt(6), balanceChangedEvent(1,
		rawAmount("-40", 18), rawAmount("-60", 18))))

	jes := st.JoinExits()
	require.Len(t, jes, 2)
	exit := jes[1]
	require.Equal(t, schema.JoinExitTypeExit, exit.Type)
	// Exit amounts are recorded as positive magnitudes.
	require.True(t, exit.Amounts[0].Equal(decimal.NewFromInt(40)), "got %s", exit.Amounts[0])
	require.True(t, exit.Amounts[1].Equal(decimal.NewFromInt(60)), "got %s", exit.Amounts[1])

	ptFrax, err := st.PoolToken(ctx, schema.PoolTokenID(testPoolID, frax))
	require.NoError(t, err)
	require.True(t, ptFrax.Balance.Equal(decimal.NewFromInt(60)), "got %s", ptFrax.Balance)

	pool, err := st.Pool(ctx, testPoolID)
	require.NoError(t, err)
	require.True(t, pool.TotalLiquidity.Equal(decimal.NewFromInt(60)), "got %s", pool.TotalLiquidity)
}

func TestHandlePoolBalanceChangedEmptyDeltasNoOp(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	registerPool(t, ix, frax, usdc)
	require.NoError(t, ix.handleEvent(context.Background(), blockAt(5), balanceChangedEvent(0)))
	require.Empty(t, st.JoinExits())
}

func TestHandlePoolBalanceChangedDeltaCountMismatchDropped(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	ctx := context.Background()
	registerPool(t, ix, frax, usdc)

	require.NoError(t, ix.handleEvent(ctx, blockAt(5), balanceChangedEvent(0, rawAmount("100", 18))))

	require.Empty(t, st.JoinExits())
	pt, err := st.PoolToken(ctx, schema.PoolTokenID(testPoolID, frax))
	require.NoError(t, err)
	require.True(t, pt.Balance.IsZero())
}

func TestHandlePoolBalanceChangedUnknownPoolDropped(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	require.NoError(t, ix.handleEvent(context.Background(), blockAt(5), &Event{
		Type: EventTypePoolBalanceChanged,
		PoolBalanceChanged: &PoolBalanceChangedEvent{
			PoolID:            "0xmissing",
			LiquidityProvider: trader,
			Deltas:            []*BigInt{rawAmount("1", 18)},
		},
	}))
	require.Empty(t, st.JoinExits())
}

func TestHandlePoolBalanceChangedCandidateScanSkipsFailingAsset(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	ctx := context.Background()
	// kyo is a pricing asset without any USD route; it ranks first in
	// the pool's token list, fails the valuation guard, and the scan
	// falls through to frax.
	registerPool(t, ix, kyo, frax)

	require.NoError(t, ix.handleEvent(ctx, blockAt(5), balanceChangedEvent(0,
		rawAmount("100", 18), rawAmount("50", 18))))

	pool, err := st.Pool(ctx, testPoolID)
	require.NoError(t, err)
	require.True(t, pool.TotalLiquidity.Equal(decimal.NewFromInt(50)), "got %s", pool.TotalLiquidity)

	phls := st.PoolHistoricalLiquidities()
	require.Len(t, phls, 1)
	require.Equal(t, schema.AddressID(frax), phls[0].PricingAsset)
}

func TestHandlePoolBalanceChangedExitUnwindsUSDBalance(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	ctx := context.Background()
	registerPool(t, ix, tokenX, frax)

	// tokenX has no stable edge and converts only through the
	// reference asset: 0.5 ETH each, 2000 USD per ETH.
	require.NoError(t, st.SaveLatestPrice(ctx, &schema.LatestPrice{
		ID:           schema.LatestPriceID(tokenX, weth),
		Asset:        schema.AddressID(tokenX),
		PricingAsset: schema.AddressID(weth),
		Price:        decimal.RequireFromString("0.5"),
		Block:        1,
		PoolID:       testPoolID,
	}))
	require.NoError(t, st.SaveLatestPrice(ctx, &schema.LatestPrice{
		ID:           schema.LatestPriceID(weth, frax),
		Asset:        schema.AddressID(weth),
		PricingAsset: schema.AddressID(frax),
		Price:        decimal.NewFromInt(2000),
		Block:        1,
		PoolID:       testPoolID,
	}))

	require.NoError(t, ix.handleEvent(ctx, blockAt(5), balanceChangedEvent(0,
		rawAmount("100", 18), rawAmount("0", 18))))

	token, err := st.Token(ctx, schema.AddressID(tokenX))
	require.NoError(t, err)
	require.True(t, token.TotalBalanceUSD.Equal(decimal.NewFromInt(100000)), "got %s", token.TotalBalanceUSD)

	// A symmetric exit must subtract exactly what the join added, even
	// though the conversion routes through the reference asset.
	require.NoError(t, ix.handleEvent(ctx, blockAt(6), balanceChangedEvent(1,
		rawAmount("-100", 18), rawAmount("0", 18))))

	token, err = st.Token(ctx, schema.AddressID(tokenX))
	require.NoError(t, err)
	require.True(t, token.TotalBalanceUSD.IsZero(), "got %s", token.TotalBalanceUSD)
	require.True(t, token.TotalBalanceNotional.IsZero(), "got %s", token.TotalBalanceNotional)
}

func TestHandleInternalBalanceChanged(t *testing.T) {
	ix, st, md := newTestIndexer(t)
	ctx := context.Background()
	md.setToken(usdc, "USD Coin", "USDC", 6)

	deposit := &Event{
		Type: EventTypeInternalBalanceChanged,
		InternalBalanceChanged: &InternalBalanceChangedEvent{
			User:  trader,
			Token: usdc,
			Delta: rawAmount("2.5", 6),
		},
	}
	require.NoError(t, ix.handleEvent(ctx, blockAt(5), deposit))

	account, err := st.Account(ctx, schema.AddressID(trader))
	require.NoError(t, err)
	require.NotNil(t, account)

	id := schema.AccountInternalBalanceID(account.ID, usdc)
	balance, err := st.AccountInternalBalance(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, balance)
	require.True(t, balance.Balance.Equal(decimal.RequireFromString("2.5")), "got %s", balance.Balance)

	withdraw := &Event{
		Type: EventTypeInternalBalanceChanged,
		InternalBalanceChanged: &InternalBalanceChangedEvent{
			User:  trader,
			Token: usdc,
			Delta: rawAmount("-1", 6),
		},
	}
	require.NoError(t, ix.handleEvent(ctx, blockAt(6), withdraw))

	balance, err = st.AccountInternalBalance(ctx, id)
	require.NoError(t, err)
	require.True(t, balance.Balance.Equal(decimal.RequireFromString("1.5")), "got %s", balance.Balance)
}
