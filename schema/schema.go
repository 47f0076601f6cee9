package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CheckpointBlockHeightKey = "blockHeight"
	CheckpointTimestampKey   = "timestamp"
)

// Checkpoint records the last block whose events have been fully applied
// to the store.
type Checkpoint struct {
	BlockHeight int64     `bson:"blockHeight"`
	Timestamp   time.Time `bson:"timestamp"`
}

const (
	TokenAddressKey = "address"
	TokenSymbolKey  = "symbol"
)

type Token struct {
	ID                   string          `bson:"_id"`
	Address              string          `bson:"address"`
	Name                 string          `bson:"name"`
	Symbol               string          `bson:"symbol"`
	Decimals             int             `bson:"decimals"`
	TotalBalanceUSD      decimal.Decimal `bson:"totalBalanceUSD"`
	TotalBalanceNotional decimal.Decimal `bson:"totalBalanceNotional"`
	TotalVolumeUSD       decimal.Decimal `bson:"totalVolumeUSD"`
	TotalVolumeNotional  decimal.Decimal `bson:"totalVolumeNotional"`
	TotalSwapCount       int64           `bson:"totalSwapCount"`
	// LatestPriceID points at the most recent LatestPrice edge that has
	// this token as its asset, for convenience lookups.
	LatestPriceID string `bson:"latestPriceId,omitempty"`
}

const (
	PoolTokenPoolIDKey  = "poolId"
	PoolTokenAddressKey = "address"
)

type PoolToken struct {
	ID       string `bson:"_id"`
	PoolID   string `bson:"poolId"`
	TokenID  string `bson:"tokenId"`
	Address  string `bson:"address"`
	Name     string `bson:"name"`
	Symbol   string `bson:"symbol"`
	Decimals int    `bson:"decimals"`
	Balance  decimal.Decimal `bson:"balance"`
	// Weight is the token's normalized weight within a weighted pool.
	// It is nil for pool types that carry no weights.
	Weight    *decimal.Decimal `bson:"weight,omitempty"`
	PriceRate decimal.Decimal  `bson:"priceRate"`
}

const (
	PoolAddressKey = "address"
)

// PoolTypeWeighted marks pools whose spot prices use normalized weights.
const PoolTypeWeighted = "Weighted"

type Pool struct {
	ID           string `bson:"_id"`
	Address      string `bson:"address"`
	PoolType     string `bson:"poolType,omitempty"`
	StrategyType int    `bson:"strategyType"`
	Name         string `bson:"name,omitempty"`
	Symbol       string `bson:"symbol,omitempty"`
	// Owner references the Account of the pool's controlling address,
	// when the pool reported one at registration.
	Owner string `bson:"owner,omitempty"`
	SwapEnabled  bool   `bson:"swapEnabled"`
	SwapFee      decimal.Decimal `bson:"swapFee"`
	// TokensList preserves registration order for the lifetime of the
	// pool; per-event delta arrays are indexed by it.
	TokensList      []string        `bson:"tokensList"`
	TotalWeight     decimal.Decimal `bson:"totalWeight"`
	TotalLiquidity  decimal.Decimal `bson:"totalLiquidity"`
	TotalShares     decimal.Decimal `bson:"totalShares"`
	TotalSwapVolume decimal.Decimal `bson:"totalSwapVolume"`
	TotalSwapFee    decimal.Decimal `bson:"totalSwapFee"`
	SwapsCount      int64           `bson:"swapsCount"`
	HoldersCount    int64           `bson:"holdersCount"`
	CreateTime      int64           `bson:"createTime"`
	Tx              string          `bson:"tx,omitempty"`
}

const (
	LatestPriceAssetKey        = "asset"
	LatestPricePricingAssetKey = "pricingAsset"
)

// LatestPrice is a directed price edge: the most recent observed price of
// one unit of Asset denominated in PricingAsset. Overwritten on every new
// compatible swap; write order equals event processing order.
type LatestPrice struct {
	ID           string          `bson:"_id"`
	Asset        string          `bson:"asset"`
	PricingAsset string          `bson:"pricingAsset"`
	Price        decimal.Decimal `bson:"price"`
	Block        int64           `bson:"block"`
	PoolID       string          `bson:"poolId"`
}

const (
	TokenPricePoolIDKey = "poolId"
	TokenPriceBlockKey  = "block"
)

// TokenPrice is an immutable historical price observation, one per
// qualifying swap side.
type TokenPrice struct {
	ID           string          `bson:"_id"`
	PoolID       string          `bson:"poolId"`
	Asset        string          `bson:"asset"`
	PricingAsset string          `bson:"pricingAsset"`
	Block        int64           `bson:"block"`
	Timestamp    int64           `bson:"timestamp"`
	Amount       decimal.Decimal `bson:"amount"`
	Price        decimal.Decimal `bson:"price"`
}

const (
	PoolHistoricalLiquidityPoolIDKey = "poolId"
	PoolHistoricalLiquidityBlockKey  = "block"
)

// PoolHistoricalLiquidity is an immutable snapshot of a pool's total
// liquidity taken whenever a liquidity recomputation succeeds.
type PoolHistoricalLiquidity struct {
	ID              string          `bson:"_id"`
	PoolID          string          `bson:"poolId"`
	PricingAsset    string          `bson:"pricingAsset"`
	Block           int64           `bson:"block"`
	PoolTotalShares decimal.Decimal `bson:"poolTotalShares"`
	PoolLiquidity   decimal.Decimal `bson:"poolLiquidity"`
	PoolShareValue  decimal.Decimal `bson:"poolShareValue"`
}

// VaultID is the _id of the singleton Vault aggregate.
const VaultID = "1"

// Vault is the global accumulator of liquidity, volume, fee and swap
// totals. It is a running total: it is only ever mutated by handlers,
// never re-derived.
type Vault struct {
	ID              string          `bson:"_id"`
	Address         string          `bson:"address"`
	PoolCount       int64           `bson:"poolCount"`
	TotalLiquidity  decimal.Decimal `bson:"totalLiquidity"`
	TotalSwapVolume decimal.Decimal `bson:"totalSwapVolume"`
	TotalSwapFee    decimal.Decimal `bson:"totalSwapFee"`
	TotalSwapCount  int64           `bson:"totalSwapCount"`
}

type Account struct {
	ID      string `bson:"_id"`
	Address string `bson:"address"`
}

type AccountInternalBalance struct {
	ID        string          `bson:"_id"`
	AccountID string          `bson:"accountId"`
	Token     string          `bson:"token"`
	Balance   decimal.Decimal `bson:"balance"`
}

const (
	SwapPoolIDKey    = "poolId"
	SwapTimestampKey = "timestamp"
)

type Swap struct {
	ID             string          `bson:"_id"`
	PoolID         string          `bson:"poolId"`
	TokenIn        string          `bson:"tokenIn"`
	TokenInSymbol  string          `bson:"tokenInSym,omitempty"`
	TokenOut       string          `bson:"tokenOut"`
	TokenOutSymbol string          `bson:"tokenOutSym,omitempty"`
	TokenAmountIn  decimal.Decimal `bson:"tokenAmountIn"`
	TokenAmountOut decimal.Decimal `bson:"tokenAmountOut"`
	ValueUSD       decimal.Decimal `bson:"valueUSD"`
	AccountID      string          `bson:"accountId"`
	Timestamp      int64           `bson:"timestamp"`
	Tx             string          `bson:"tx"`
}

const (
	JoinExitTypeJoin = "Join"
	JoinExitTypeExit = "Exit"
)

type JoinExit struct {
	ID        string            `bson:"_id"`
	Type      string            `bson:"type"`
	PoolID    string            `bson:"poolId"`
	AccountID string            `bson:"accountId"`
	Amounts   []decimal.Decimal `bson:"amounts"`
	Timestamp int64             `bson:"timestamp"`
	Tx        string            `bson:"tx"`
}

type PoolSnapshot struct {
	ID              string            `bson:"_id"`
	PoolID          string            `bson:"poolId"`
	Amounts         []decimal.Decimal `bson:"amounts"`
	TotalShares     decimal.Decimal   `bson:"totalShares"`
	TotalLiquidity  decimal.Decimal   `bson:"totalLiquidity"`
	TotalSwapVolume decimal.Decimal   `bson:"totalSwapVolume"`
	TotalSwapFee    decimal.Decimal   `bson:"totalSwapFee"`
	SwapsCount      int64             `bson:"swapsCount"`
	HoldersCount    int64             `bson:"holdersCount"`
	Timestamp       int64             `bson:"timestamp"`
}

type TokenSnapshot struct {
	ID                   string          `bson:"_id"`
	TokenID              string          `bson:"tokenId"`
	TotalBalanceUSD      decimal.Decimal `bson:"totalBalanceUSD"`
	TotalBalanceNotional decimal.Decimal `bson:"totalBalanceNotional"`
	TotalVolumeUSD       decimal.Decimal `bson:"totalVolumeUSD"`
	TotalVolumeNotional  decimal.Decimal `bson:"totalVolumeNotional"`
	TotalSwapCount       int64           `bson:"totalSwapCount"`
	Timestamp            int64           `bson:"timestamp"`
}
