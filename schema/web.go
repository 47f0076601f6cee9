package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

type StatusResponse struct {
	LatestBlockHeight int64           `json:"latestBlockHeight"`
	PoolCount         int64           `json:"poolCount"`
	TotalLiquidity    decimal.Decimal `json:"totalLiquidity"`
	TotalSwapVolume   decimal.Decimal `json:"totalSwapVolume"`
	TotalSwapFee      decimal.Decimal `json:"totalSwapFee"`
	TotalSwapCount    int64           `json:"totalSwapCount"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type PoolsResponse struct {
	Pools     []PoolsResponsePool `json:"pools"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type PoolsResponsePool struct {
	ID             string               `json:"id"`
	Address        string               `json:"address"`
	Symbol         string               `json:"symbol,omitempty"`
	SwapFee        decimal.Decimal      `json:"swapFee"`
	TotalLiquidity decimal.Decimal      `json:"totalLiquidity"`
	TotalShares    decimal.Decimal      `json:"totalShares"`
	SwapsCount     int64                `json:"swapsCount"`
	Tokens         []PoolsResponseToken `json:"tokens"`
}

type PoolsResponseToken struct {
	Address string           `json:"address"`
	Symbol  string           `json:"symbol,omitempty"`
	Balance decimal.Decimal  `json:"balance"`
	Weight  *decimal.Decimal `json:"weight,omitempty"`
}

type PricesResponse struct {
	Prices    []PricesResponsePrice `json:"prices"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type PricesResponsePrice struct {
	Asset        string          `json:"asset"`
	PricingAsset string          `json:"pricingAsset"`
	Price        decimal.Decimal `json:"price"`
	Block        int64           `json:"block"`
	PoolID       string          `json:"poolId"`
}

type PoolResponse struct {
	Pool      PoolsResponsePool `json:"pool"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
