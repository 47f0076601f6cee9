package indexer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/schema"
)

// scaleAmount converts a raw uint256 token amount to its human-scale
// decimal value.
func scaleAmount(raw *BigInt, decimals int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Set(&raw.Int), -int32(decimals))
}

// getOrRegisterToken loads a token entity, creating it from on-chain
// metadata on first sight. Metadata failures leave the corresponding
// field at its default (empty name/symbol, zero decimals).
func (ix *Indexer) getOrRegisterToken(ctx context.Context, addr common.Address) (*schema.Token, error) {
	id := schema.AddressID(addr)
	token, err := ix.store.Token(ctx, id)
	if err != nil {
		return nil, err
	}
	if token != nil {
		return token, nil
	}

	token = &schema.Token{ID: id, Address: id}
	if name, err := ix.metadata.Name(ctx, addr); err == nil {
		token.Name = name
	} else {
		ix.logger.Debug("token name unavailable", zap.String("token", id), zap.Error(err))
	}
	if symbol, err := ix.metadata.Symbol(ctx, addr); err == nil {
		token.Symbol = symbol
	} else {
		ix.logger.Debug("token symbol unavailable", zap.String("token", id), zap.Error(err))
	}
	if decimals, err := ix.metadata.Decimals(ctx, addr); err == nil {
		token.Decimals = decimals
	} else {
		ix.logger.Debug("token decimals unavailable", zap.String("token", id), zap.Error(err))
	}
	if err := ix.store.SaveToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// getOrRegisterPoolToken loads a pool's membership record for a token,
// creating it with a zero balance on first sight. Unlike bare tokens,
// a pool token whose decimals lookup fails defaults to 18: pool members
// are overwhelmingly 18-decimal assets and a zero default would corrupt
// every scaled balance.
func (ix *Indexer) getOrRegisterPoolToken(ctx context.Context, poolID string, addr common.Address) (*schema.PoolToken, error) {
	id := schema.PoolTokenID(poolID, addr)
	pt, err := ix.store.PoolToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if pt != nil {
		return pt, nil
	}

	token, err := ix.getOrRegisterToken(ctx, addr)
	if err != nil {
		return nil, err
	}
	decimals := 18
	if d, err := ix.metadata.Decimals(ctx, addr); err == nil {
		decimals = d
	}
	pt = &schema.PoolToken{
		ID:        id,
		PoolID:    poolID,
		TokenID:   token.ID,
		Address:   token.Address,
		Name:      token.Name,
		Symbol:    token.Symbol,
		Decimals:  decimals,
		PriceRate: decimal.NewFromInt(1),
	}
	if err := ix.store.SavePoolToken(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

func (ix *Indexer) getOrRegisterAccount(ctx context.Context, addr common.Address) (*schema.Account, error) {
	id := schema.AddressID(addr)
	a, err := ix.store.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}
	a = &schema.Account{ID: id, Address: id}
	if err := ix.store.SaveAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (ix *Indexer) getOrRegisterAccountInternalBalance(ctx context.Context, accountID string, token common.Address) (*schema.AccountInternalBalance, error) {
	id := schema.AccountInternalBalanceID(accountID, token)
	b, err := ix.store.AccountInternalBalance(ctx, id)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}
	b = &schema.AccountInternalBalance{
		ID:        id,
		AccountID: accountID,
		Token:     schema.AddressID(token),
	}
	if err := ix.store.SaveAccountInternalBalance(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
