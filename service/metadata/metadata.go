// Package metadata resolves token and pool attributes through read-only
// contract calls: ERC-20 name/symbol/decimals and the normalized weights
// of weighted pools. Calls that revert or fail surface as errors; callers
// substitute their documented defaults instead of aborting.
package metadata

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

const erc20ABI = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

const weightedPoolABI = `[
	{"inputs":[],"name":"getNormalizedWeights","outputs":[{"name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"}
]`

// weightDecimals is the fixed-point scale pool weights are reported at.
const weightDecimals = 18

type Client struct {
	ec    *ethclient.Client
	erc20 abi.ABI
	pool  abi.ABI
}

func NewClient(ec *ethclient.Client) (*Client, error) {
	erc20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	pool, err := abi.JSON(strings.NewReader(weightedPoolABI))
	if err != nil {
		return nil, fmt.Errorf("parse weighted pool abi: %w", err)
	}
	return &Client{ec: ec, erc20: erc20, pool: pool}, nil
}

func (c *Client) call(ctx context.Context, to common.Address, parsed abi.ABI, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	res, err := c.ec.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}
	out, err := parsed.Unpack(method, res)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

func (c *Client) Name(ctx context.Context, token common.Address) (string, error) {
	out, err := c.call(ctx, token, c.erc20, "name")
	if err != nil {
		return "", err
	}
	s, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected name type %T", out[0])
	}
	return s, nil
}

func (c *Client) Symbol(ctx context.Context, token common.Address) (string, error) {
	out, err := c.call(ctx, token, c.erc20, "symbol")
	if err != nil {
		return "", err
	}
	s, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected symbol type %T", out[0])
	}
	return s, nil
}

func (c *Client) Decimals(ctx context.Context, token common.Address) (int, error) {
	out, err := c.call(ctx, token, c.erc20, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", out[0])
	}
	return int(d), nil
}

// NormalizedWeights returns a weighted pool's per-token weights scaled to
// the 0–1 range. Pool types without weights revert, which comes back as
// an error the caller treats as "unavailable".
func (c *Client) NormalizedWeights(ctx context.Context, pool common.Address) ([]decimal.Decimal, error) {
	out, err := c.call(ctx, pool, c.pool, "getNormalizedWeights")
	if err != nil {
		return nil, err
	}
	raw, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected weights type %T", out[0])
	}
	weights := make([]decimal.Decimal, len(raw))
	for i, w := range raw {
		weights[i] = decimal.NewFromBigInt(w, -weightDecimals)
	}
	return weights, nil
}
