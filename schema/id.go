package schema

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressID renders an address the way every entity id embeds it:
// lowercase hex, 0x-prefixed.
func AddressID(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func PoolTokenID(poolID string, token common.Address) string {
	return poolID + "-" + AddressID(token)
}

func LatestPriceID(asset, pricingAsset common.Address) string {
	return AddressID(asset) + "-" + AddressID(pricingAsset)
}

func TokenPriceID(poolID string, asset, pricingAsset common.Address, block int64) string {
	return fmt.Sprintf("%s-%s-%s-%d", poolID, AddressID(asset), AddressID(pricingAsset), block)
}

func PoolHistoricalLiquidityID(poolID string, pricingAsset common.Address, block int64) string {
	return fmt.Sprintf("%s-%s-%d", poolID, AddressID(pricingAsset), block)
}

func AccountInternalBalanceID(accountID string, token common.Address) string {
	return accountID + "-" + AddressID(token)
}

// TxID identifies records created once per log: swaps and join/exits.
func TxID(txHash string, logIndex uint) string {
	return fmt.Sprintf("%s-%d", txHash, logIndex)
}

const day = 24 * 60 * 60

// DayTimestamp truncates a unix timestamp to the start of its UTC day,
// the granularity pool and token snapshots are kept at.
func DayTimestamp(ts int64) int64 {
	return ts - ts%day
}

func PoolSnapshotID(poolID string, ts int64) string {
	return fmt.Sprintf("%s-%d", poolID, DayTimestamp(ts))
}

func TokenSnapshotID(token common.Address, ts int64) string {
	return fmt.Sprintf("%s-%d", AddressID(token), DayTimestamp(ts))
}
