// Package indexer drives the chain-to-store pipeline. It tails per-block
// event files produced by the exporter, applies every event in order
// through the pricing engine and the entity store, and checkpoints after
// each block so a restart resumes exactly where it stopped.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/config"
	"github.com/koyo-finance/exchange-backend/service/pricing"
	"github.com/koyo-finance/exchange-backend/service/store"
	"github.com/koyo-finance/exchange-backend/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Metadata resolves on-chain token and pool attributes. Lookups that fail
// (contract reverts, transient RPC trouble) return errors; the indexer
// falls back to documented defaults rather than blocking the pipeline.
type Metadata interface {
	Name(ctx context.Context, token common.Address) (string, error)
	Symbol(ctx context.Context, token common.Address) (string, error)
	Decimals(ctx context.Context, token common.Address) (int, error)
	NormalizedWeights(ctx context.Context, pool common.Address) ([]decimal.Decimal, error)
}

type Indexer struct {
	cfg      config.IndexerConfig
	network  config.Network
	store    store.Store
	pricing  *pricing.Service
	metadata Metadata
	logger   *zap.Logger
}

func New(cfg config.IndexerConfig, network config.Network, st store.Store, md Metadata, logger *zap.Logger) *Indexer {
	return &Indexer{
		cfg:      cfg,
		network:  network,
		store:    st,
		pricing:  pricing.NewService(network, st, logger),
		metadata: md,
		logger:   logger,
	}
}

// Run processes blocks one at a time until ctx is canceled. Each block is
// applied fully before its height is checkpointed, so event handlers may
// assume every earlier event has already been absorbed.
func (ix *Indexer) Run(ctx context.Context) error {
	h, err := ix.store.LatestBlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	ix.logger.Info("starting indexer", zap.Int64("height", h), zap.String("network", ix.network.Name))

	for {
		h++
		data, err := ix.waitForBlockData(ctx, h)
		if err != nil {
			return err
		}
		if err := ix.handleBlockData(ctx, data); err != nil {
			return fmt.Errorf("block %d: %w", h, err)
		}
		if err := ix.store.SetLatestBlockHeight(ctx, h); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
		blocksProcessed.Inc()
	}
}

func (ix *Indexer) blockDataFilename(height int64) string {
	bs := int64(ix.cfg.BlockDataBucketSize)
	bucket := height / bs * bs
	return filepath.Join(ix.cfg.BlockDataDir, fmt.Sprintf(ix.cfg.BlockDataFilename, bucket, height))
}

func (ix *Indexer) readBlockData(height int64) (*BlockData, error) {
	b, err := os.ReadFile(ix.blockDataFilename(height))
	if err != nil {
		return nil, err
	}
	var data BlockData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("unmarshal block data: %w", err)
	}
	if data.Header.Height != height {
		return nil, fmt.Errorf("wrong block height %d in block data file for height %d", data.Header.Height, height)
	}
	return &data, nil
}

// waitForBlockData polls until the block data file for height appears.
func (ix *Indexer) waitForBlockData(ctx context.Context, height int64) (*BlockData, error) {
	ticker := util.NewImmediateTicker(ix.cfg.BlockDataWaitingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		data, err := ix.readBlockData(height)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		return data, nil
	}
}

func (ix *Indexer) handleBlockData(ctx context.Context, data *BlockData) error {
	for i := range data.Events {
		ev := &data.Events[i]
		if err := ix.handleEvent(ctx, data.Header, ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", ev.LogIndex, ev.Type, err)
		}
		eventsProcessed.WithLabelValues(ev.Type).Inc()
	}
	return nil
}

func (ix *Indexer) handleEvent(ctx context.Context, blk BlockHeader, ev *Event) error {
	switch ev.Type {
	case EventTypePoolRegistered:
		return ix.handlePoolRegistered(ctx, blk, ev)
	case EventTypeTokensRegistered:
		return ix.handleTokensRegistered(ctx, ev)
	case EventTypeSwap:
		return ix.handleSwap(ctx, blk, ev)
	case EventTypePoolBalanceChanged:
		return ix.handlePoolBalanceChanged(ctx, blk, ev)
	case EventTypeInternalBalanceChanged:
		return ix.handleInternalBalanceChanged(ctx, ev)
	default:
		ix.logger.Warn("unknown event type", zap.String("type", ev.Type))
		eventsDropped.WithLabelValues(ev.Type).Inc()
		return nil
	}
}

// drop logs and counts an event that references state the store has never
// seen. The block itself is still checkpointed.
func (ix *Indexer) drop(ev *Event, reason string, fields ...zap.Field) {
	fields = append(fields, zap.String("reason", reason), zap.String("tx", ev.TxHash))
	ix.logger.Warn("dropping event", fields...)
	eventsDropped.WithLabelValues(ev.Type).Inc()
}
