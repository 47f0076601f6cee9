package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	jsoniter "github.com/json-iterator/go"

	"github.com/koyo-finance/exchange-backend/schema"
	"github.com/koyo-finance/exchange-backend/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (s *Server) UpdateStatusCache(ctx context.Context) error {
	blockHeight, err := s.st.LatestBlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("get latest block height: %w", err)
	}
	resp := schema.StatusResponse{
		LatestBlockHeight: blockHeight,
	}
	vault, err := s.st.Vault(ctx)
	if err != nil {
		return fmt.Errorf("get vault: %w", err)
	}
	if vault != nil {
		resp.PoolCount = vault.PoolCount
		resp.TotalLiquidity = vault.TotalLiquidity
		resp.TotalSwapVolume = vault.TotalSwapVolume
		resp.TotalSwapFee = vault.TotalSwapFee
		resp.TotalSwapCount = vault.TotalSwapCount
	}
	resp.UpdatedAt = time.Now()
	if err := s.SaveCache(ctx, s.cfg.Redis.StatusCacheKey, resp); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

func (s *Server) UpdatePoolsCache(ctx context.Context) error {
	pools, err := s.st.Pools(ctx)
	if err != nil {
		return fmt.Errorf("get pools: %w", err)
	}
	resp := schema.PoolsResponse{
		Pools: []schema.PoolsResponsePool{},
	}
	for _, p := range pools {
		rp := schema.PoolsResponsePool{
			ID:             p.ID,
			Address:        p.Address,
			Symbol:         p.Symbol,
			SwapFee:        p.SwapFee,
			TotalLiquidity: p.TotalLiquidity,
			TotalShares:    p.TotalShares,
			SwapsCount:     p.SwapsCount,
		}
		for _, tokenAddress := range p.TokensList {
			pt, err := s.st.PoolToken(ctx, p.ID+"-"+tokenAddress)
			if err != nil {
				return fmt.Errorf("get pool token: %w", err)
			}
			if pt == nil {
				continue
			}
			rp.Tokens = append(rp.Tokens, schema.PoolsResponseToken{
				Address: pt.Address,
				Symbol:  pt.Symbol,
				Balance: pt.Balance,
				Weight:  pt.Weight,
			})
		}
		resp.Pools = append(resp.Pools, rp)
	}
	resp.UpdatedAt = time.Now()
	if err := s.SaveCache(ctx, s.cfg.Redis.PoolsCacheKey, resp); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

func (s *Server) UpdatePricesCache(ctx context.Context) error {
	lps, err := s.st.LatestPrices(ctx)
	if err != nil {
		return fmt.Errorf("get latest prices: %w", err)
	}
	resp := schema.PricesResponse{
		Prices: []schema.PricesResponsePrice{},
	}
	for _, lp := range lps {
		resp.Prices = append(resp.Prices, schema.PricesResponsePrice{
			Asset:        lp.Asset,
			PricingAsset: lp.PricingAsset,
			Price:        lp.Price,
			Block:        lp.Block,
			PoolID:       lp.PoolID,
		})
	}
	resp.UpdatedAt = time.Now()
	if err := s.SaveCache(ctx, s.cfg.Redis.PricesCacheKey, resp); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

func (s *Server) SaveCache(ctx context.Context, key string, v interface{}) error {
	c, err := s.rp.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get redis conn: %w", err)
	}
	defer c.Close()
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	_, err = c.Do("SET", key, b)
	return err
}

func (s *Server) LoadCache(ctx context.Context, key string) ([]byte, error) {
	c, err := s.rp.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("get redis conn: %w", err)
	}
	defer c.Close()
	return redis.Bytes(c.Do("GET", key))
}

func (s *Server) LoadStatusCache(ctx context.Context) (resp schema.StatusResponse, err error) {
	b, err := s.LoadCache(ctx, s.cfg.Redis.StatusCacheKey)
	if err != nil {
		return resp, err
	}
	err = json.Unmarshal(b, &resp)
	if err != nil {
		return resp, fmt.Errorf("unmarshal response: %w", err)
	}
	return
}

func (s *Server) LoadPoolsCache(ctx context.Context) (resp schema.PoolsResponse, err error) {
	b, err := s.LoadCache(ctx, s.cfg.Redis.PoolsCacheKey)
	if err != nil {
		return resp, err
	}
	err = json.Unmarshal(b, &resp)
	if err != nil {
		return resp, fmt.Errorf("unmarshal response: %w", err)
	}
	return
}

func (s *Server) LoadPricesCache(ctx context.Context) (resp schema.PricesResponse, err error) {
	b, err := s.LoadCache(ctx, s.cfg.Redis.PricesCacheKey)
	if err != nil {
		return resp, err
	}
	err = json.Unmarshal(b, &resp)
	if err != nil {
		return resp, fmt.Errorf("unmarshal response: %w", err)
	}
	return
}

// RetryLoadingCache runs fn until it succeeds or times out, retrying only
// when the cache key does not exist yet (the background updater has not
// populated it). Other errors abort immediately.
func RetryLoadingCache(ctx context.Context, fn func(context.Context) error, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := util.NewImmediateTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				if !errors.Is(err, redis.ErrNil) {
					return err
				}
			} else {
				return nil
			}
		}
	}
}
