package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/koyo-finance/exchange-backend/config"
	"github.com/koyo-finance/exchange-backend/schema"
)

const (
	checkpointCollection      = "checkpoints"
	tokenCollection           = "tokens"
	poolTokenCollection       = "pool_tokens"
	poolCollection            = "pools"
	latestPriceCollection     = "latest_prices"
	tokenPriceCollection      = "token_prices"
	poolHistoricalCollection  = "pool_historical_liquidity"
	vaultCollection           = "vaults"
	accountCollection         = "accounts"
	internalBalanceCollection = "account_internal_balances"
	swapCollection            = "swaps"
	joinExitCollection        = "join_exits"
	poolSnapshotCollection    = "pool_snapshots"
	tokenSnapshotCollection   = "token_snapshots"
)

// Service is the mongo-backed Store.
type Service struct {
	cfg config.MongoDBConfig
	mc  *mongo.Client
}

var _ Store = (*Service)(nil)

func NewService(cfg config.MongoDBConfig, mc *mongo.Client) *Service {
	return &Service{cfg, mc}
}

func (s *Service) collection(name string) *mongo.Collection {
	return s.mc.Database(s.cfg.DB).Collection(name)
}

func (s *Service) EnsureDBIndexes(ctx context.Context) ([]string, error) {
	var res []string
	for _, x := range []struct {
		coll *mongo.Collection
		is   []mongo.IndexModel
	}{
		{s.collection(poolTokenCollection), []mongo.IndexModel{
			{Keys: bson.D{{Key: schema.PoolTokenPoolIDKey, Value: 1}}},
		}},
		{s.collection(latestPriceCollection), []mongo.IndexModel{
			{Keys: bson.D{{Key: schema.LatestPriceAssetKey, Value: 1}, {Key: schema.LatestPricePricingAssetKey, Value: 1}}},
		}},
		{s.collection(tokenPriceCollection), []mongo.IndexModel{
			{Keys: bson.D{{Key: schema.TokenPricePoolIDKey, Value: 1}, {Key: schema.TokenPriceBlockKey, Value: 1}}},
		}},
		{s.collection(poolHistoricalCollection), []mongo.IndexModel{
			{Keys: bson.D{{Key: schema.PoolHistoricalLiquidityPoolIDKey, Value: 1}, {Key: schema.PoolHistoricalLiquidityBlockKey, Value: 1}}},
		}},
		{s.collection(swapCollection), []mongo.IndexModel{
			{Keys: bson.D{{Key: schema.SwapPoolIDKey, Value: 1}, {Key: schema.SwapTimestampKey, Value: 1}}},
		}},
	} {
		names, err := x.coll.Indexes().CreateMany(ctx, x.is)
		if err != nil {
			return res, err
		}
		res = append(res, names...)
	}
	return res, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	var v T
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s %q: %w", coll.Name(), id, err)
	}
	return &v, nil
}

func upsert(ctx context.Context, coll *mongo.Collection, id string, v interface{}) error {
	if _, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, v, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert %s %q: %w", coll.Name(), id, err)
	}
	return nil
}

func (s *Service) LatestBlockHeight(ctx context.Context) (int64, error) {
	var cp schema.Checkpoint
	if err := s.collection(checkpointCollection).FindOne(ctx, bson.M{
		schema.CheckpointBlockHeightKey: bson.M{"$exists": true},
	}).Decode(&cp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return cp.BlockHeight, nil
}

func (s *Service) SetLatestBlockHeight(ctx context.Context, height int64) error {
	_, err := s.collection(checkpointCollection).UpdateOne(ctx, bson.M{
		schema.CheckpointBlockHeightKey: bson.M{"$exists": true},
	}, bson.M{
		"$set": bson.M{
			schema.CheckpointBlockHeightKey: height,
			schema.CheckpointTimestampKey:   time.Now(),
		},
	}, options.Update().SetUpsert(true))
	return err
}

func (s *Service) Token(ctx context.Context, id string) (*schema.Token, error) {
	return findOne[schema.Token](ctx, s.collection(tokenCollection), id)
}

func (s *Service) SaveToken(ctx context.Context, t *schema.Token) error {
	return upsert(ctx, s.collection(tokenCollection), t.ID, t)
}

func (s *Service) PoolToken(ctx context.Context, id string) (*schema.PoolToken, error) {
	return findOne[schema.PoolToken](ctx, s.collection(poolTokenCollection), id)
}

func (s *Service) SavePoolToken(ctx context.Context, pt *schema.PoolToken) error {
	return upsert(ctx, s.collection(poolTokenCollection), pt.ID, pt)
}

func (s *Service) Pool(ctx context.Context, id string) (*schema.Pool, error) {
	return findOne[schema.Pool](ctx, s.collection(poolCollection), id)
}

func (s *Service) SavePool(ctx context.Context, p *schema.Pool) error {
	return upsert(ctx, s.collection(poolCollection), p.ID, p)
}

func (s *Service) Pools(ctx context.Context) ([]schema.Pool, error) {
	cur, err := s.collection(poolCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find pools: %w", err)
	}
	defer cur.Close(ctx)
	var ps []schema.Pool
	if err := cur.All(ctx, &ps); err != nil {
		return nil, fmt.Errorf("decode pools: %w", err)
	}
	return ps, nil
}

func (s *Service) LatestPrice(ctx context.Context, id string) (*schema.LatestPrice, error) {
	return findOne[schema.LatestPrice](ctx, s.collection(latestPriceCollection), id)
}

func (s *Service) SaveLatestPrice(ctx context.Context, lp *schema.LatestPrice) error {
	return upsert(ctx, s.collection(latestPriceCollection), lp.ID, lp)
}

func (s *Service) LatestPrices(ctx context.Context) ([]schema.LatestPrice, error) {
	cur, err := s.collection(latestPriceCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find latest prices: %w", err)
	}
	defer cur.Close(ctx)
	var lps []schema.LatestPrice
	if err := cur.All(ctx, &lps); err != nil {
		return nil, fmt.Errorf("decode latest prices: %w", err)
	}
	return lps, nil
}

func (s *Service) SaveTokenPrice(ctx context.Context, tp *schema.TokenPrice) error {
	return upsert(ctx, s.collection(tokenPriceCollection), tp.ID, tp)
}

func (s *Service) SavePoolHistoricalLiquidity(ctx context.Context, phl *schema.PoolHistoricalLiquidity) error {
	return upsert(ctx, s.collection(poolHistoricalCollection), phl.ID, phl)
}

func (s *Service) Vault(ctx context.Context) (*schema.Vault, error) {
	return findOne[schema.Vault](ctx, s.collection(vaultCollection), schema.VaultID)
}

func (s *Service) SaveVault(ctx context.Context, v *schema.Vault) error {
	return upsert(ctx, s.collection(vaultCollection), v.ID, v)
}

func (s *Service) Account(ctx context.Context, id string) (*schema.Account, error) {
	return findOne[schema.Account](ctx, s.collection(accountCollection), id)
}

func (s *Service) SaveAccount(ctx context.Context, a *schema.Account) error {
	return upsert(ctx, s.collection(accountCollection), a.ID, a)
}

func (s *Service) AccountInternalBalance(ctx context.Context, id string) (*schema.AccountInternalBalance, error) {
	return findOne[schema.AccountInternalBalance](ctx, s.collection(internalBalanceCollection), id)
}

func (s *Service) SaveAccountInternalBalance(ctx context.Context, b *schema.AccountInternalBalance) error {
	return upsert(ctx, s.collection(internalBalanceCollection), b.ID, b)
}

func (s *Service) SaveSwap(ctx context.Context, sw *schema.Swap) error {
	return upsert(ctx, s.collection(swapCollection), sw.ID, sw)
}

func (s *Service) SaveJoinExit(ctx context.Context, je *schema.JoinExit) error {
	return upsert(ctx, s.collection(joinExitCollection), je.ID, je)
}

func (s *Service) SavePoolSnapshot(ctx context.Context, ps *schema.PoolSnapshot) error {
	return upsert(ctx, s.collection(poolSnapshotCollection), ps.ID, ps)
}

func (s *Service) SaveTokenSnapshot(ctx context.Context, ts *schema.TokenSnapshot) error {
	return upsert(ctx, s.collection(tokenSnapshotCollection), ts.ID, ts)
}
