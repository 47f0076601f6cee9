package indexer

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Event types carried in block data files. Decoding raw logs into these
// typed records is the exporter's responsibility; the indexer only ever
// sees fully resolved fields.
const (
	EventTypePoolRegistered         = "pool_registered"
	EventTypeTokensRegistered       = "tokens_registered"
	EventTypeSwap                   = "swap"
	EventTypePoolBalanceChanged     = "pool_balance_changed"
	EventTypeInternalBalanceChanged = "internal_balance_changed"
)

type BlockData struct {
	Header BlockHeader `json:"block_header"`
	Events []Event     `json:"events"`
}

type BlockHeader struct {
	Height int64     `json:"height"`
	Time   time.Time `json:"time"`
}

// Event is the envelope around one decoded log. Exactly one of the typed
// payload fields is set, matching Type. Events within a block are already
// ordered by log index.
type Event struct {
	Type     string `json:"type"`
	LogIndex uint   `json:"log_index"`
	TxHash   string `json:"tx_hash"`

	PoolRegistered         *PoolRegisteredEvent         `json:"pool_registered,omitempty"`
	TokensRegistered       *TokensRegisteredEvent       `json:"tokens_registered,omitempty"`
	Swap                   *SwapEvent                   `json:"swap,omitempty"`
	PoolBalanceChanged     *PoolBalanceChangedEvent     `json:"pool_balance_changed,omitempty"`
	InternalBalanceChanged *InternalBalanceChangedEvent `json:"internal_balance_changed,omitempty"`
}

type PoolRegisteredEvent struct {
	PoolID         string         `json:"pool_id"`
	PoolAddress    common.Address `json:"pool_address"`
	PoolType       string         `json:"pool_type,omitempty"`
	Specialization int            `json:"specialization"`
	// SwapFee is the raw fee fraction scaled by 1e18.
	SwapFee *BigInt `json:"swap_fee"`
	// Owner is resolved from the pool contract by the exporter; the zero
	// address means the pool reported no owner.
	Owner common.Address `json:"owner,omitempty"`
}

type TokensRegisteredEvent struct {
	PoolID string           `json:"pool_id"`
	Tokens []common.Address `json:"tokens"`
}

type SwapEvent struct {
	PoolID    string         `json:"pool_id"`
	TokenIn   common.Address `json:"token_in"`
	TokenOut  common.Address `json:"token_out"`
	AmountIn  *BigInt        `json:"amount_in"`
	AmountOut *BigInt        `json:"amount_out"`
	Sender    common.Address `json:"sender"`
}

type PoolBalanceChangedEvent struct {
	PoolID            string         `json:"pool_id"`
	LiquidityProvider common.Address `json:"liquidity_provider"`
	// Deltas follow the pool's registered token order; positive sums are
	// joins, the rest exits.
	Deltas []*BigInt `json:"deltas"`
}

type InternalBalanceChangedEvent struct {
	User  common.Address `json:"user"`
	Token common.Address `json:"token"`
	Delta *BigInt        `json:"delta"`
}

// BigInt is a big.Int that marshals as a quoted base-10 string, the way
// uint256 values appear in block data files.
type BigInt struct {
	big.Int
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("invalid big integer %q", s)
	}
	return nil
}

func (b *BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

func sumDeltas(deltas []*BigInt) *big.Int {
	total := new(big.Int)
	for _, d := range deltas {
		if d != nil {
			total.Add(total, &d.Int)
		}
	}
	return total
}
