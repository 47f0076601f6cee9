package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const DefaultNetworkName = "boba"

// BPTDecimals is the number of decimals every pool share token uses.
const BPTDecimals = 18

// Network holds the static, per-deployment asset tables the pricing
// engine consults. PricingAssets and USDStableAssets are ordered: the
// position of an asset determines its priority when multiple price
// routes are available.
type Network struct {
	Name string

	VaultAddress common.Address

	// ReferenceAsset is the wrapped native currency token, used as the
	// single intermediate hop for native-denominated pricing.
	ReferenceAsset common.Address

	PricingAssets   []common.Address
	USDStableAssets []common.Address

	// MinPoolLiquidity is the minimum total pool liquidity (in USD)
	// required before swaps against the pool produce price observations.
	MinPoolLiquidity decimal.Decimal
}

var networks = map[string]Network{
	"boba": {
		Name:           "boba",
		VaultAddress:   common.HexToAddress("0x2A4409Cc7d2AE7ca1E3D915337D1B6Ba2350D6a3"),
		ReferenceAsset: common.HexToAddress("0xDeadDeAddeAddEAddeadDEaDDEAdDeaDDeAD0000"),
		PricingAssets: []common.Address{
			common.HexToAddress("0xDeadDeAddeAddEAddeadDEaDDEAdDeaDDeAD0000"), // WETH
			common.HexToAddress("0x66a2A913e447d6b4BF33EFbec43aAeF87890FBbc"), // USDC
			common.HexToAddress("0x7562F525106F5d54E891e005867Bf489B5988CD9"), // FRAX
			common.HexToAddress("0xf74195Bb8a5cf652411867c5C2C5b8C2a402be35"), // DAI
			common.HexToAddress("0x618CC6549ddf12de637d46CDDadaFC0C2951131C"), // KYO
		},
		USDStableAssets: []common.Address{
			common.HexToAddress("0x7562F525106F5d54E891e005867Bf489B5988CD9"), // FRAX
			common.HexToAddress("0x66a2A913e447d6b4BF33EFbec43aAeF87890FBbc"), // USDC
			common.HexToAddress("0xf74195Bb8a5cf652411867c5C2C5b8C2a402be35"), // DAI
		},
		MinPoolLiquidity: decimal.NewFromInt(10),
	},
	"aurora": {
		Name:           "aurora",
		VaultAddress:   common.HexToAddress("0x0613ADbD846CB73E65aA474b785F52697af04c0b"),
		ReferenceAsset: common.HexToAddress("0xC9BdeEd33CD01541e1eeD10f90519d2C06Fe3feB"),
		PricingAssets: []common.Address{
			common.HexToAddress("0xC9BdeEd33CD01541e1eeD10f90519d2C06Fe3feB"), // WETH
			common.HexToAddress("0xB12BFcA5A55806AaF64E99521918A4bf0fC40802"), // USDC
			common.HexToAddress("0xE4B9e004389d91e4134a28F19BD833cBA1d994B6"), // FRAX
			common.HexToAddress("0xe3520349F477A5F6EB06107066048508498A291b"), // DAI
		},
		USDStableAssets: []common.Address{
			common.HexToAddress("0xE4B9e004389d91e4134a28F19BD833cBA1d994B6"), // FRAX
			common.HexToAddress("0xB12BFcA5A55806AaF64E99521918A4bf0fC40802"), // USDC
			common.HexToAddress("0xe3520349F477A5F6EB06107066048508498A291b"), // DAI
		},
		MinPoolLiquidity: decimal.NewFromInt(10),
	},
}

func ForNetwork(name string) (Network, error) {
	n, ok := networks[name]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q", name)
	}
	if err := n.Validate(); err != nil {
		return Network{}, fmt.Errorf("validate network %q: %w", name, err)
	}
	return n, nil
}

func (n Network) Validate() error {
	pricing := make(map[common.Address]struct{})
	for _, a := range n.PricingAssets {
		pricing[a] = struct{}{}
	}
	for _, a := range n.USDStableAssets {
		if _, ok := pricing[a]; !ok {
			return fmt.Errorf("stable asset %s is not a pricing asset", a.Hex())
		}
		// The USD fallback converts through the reference asset exactly
		// once. A reference asset pegged as a stable would let that hop
		// recurse into itself.
		if a == n.ReferenceAsset {
			return fmt.Errorf("reference asset %s must not be a stable asset", a.Hex())
		}
	}
	if len(n.PricingAssets) == 0 {
		return fmt.Errorf("no pricing assets configured")
	}
	return nil
}
