package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/config"
	"github.com/koyo-finance/exchange-backend/indexer"
	"github.com/koyo-finance/exchange-backend/service/metadata"
	"github.com/koyo-finance/exchange-backend/service/store"
)

func IndexerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexer",
		Short: "run indexer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load("config.yml")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Indexer.Validate(); err != nil {
				return fmt.Errorf("validate indexer config: %w", err)
			}
			network, err := config.ForNetwork(cfg.Network)
			if err != nil {
				return err
			}

			logger, err := cfg.Indexer.Log.Build()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			mc, err := mongo.Connect(context.Background(),
				options.Client().ApplyURI(cfg.Indexer.MongoDB.URI).SetRegistry(store.Registry()))
			if err != nil {
				return fmt.Errorf("connect mongodb: %w", err)
			}
			defer mc.Disconnect(context.Background())

			st := store.NewService(cfg.Indexer.MongoDB, mc)
			if _, err := st.EnsureDBIndexes(context.Background()); err != nil {
				return fmt.Errorf("ensure db indexes: %w", err)
			}

			ec, err := ethclient.Dial(cfg.Indexer.RPCEndpoint)
			if err != nil {
				return fmt.Errorf("dial rpc endpoint: %w", err)
			}
			defer ec.Close()
			md, err := metadata.NewClient(ec)
			if err != nil {
				return fmt.Errorf("new metadata client: %w", err)
			}

			ix := indexer.New(cfg.Indexer, network, st, md, logger)

			logger.Info("started", zap.String("network", network.Name))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan error)
			go func() {
				done <- ix.Run(ctx)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)
			<-quit

			logger.Info("gracefully shutting down")
			cancel()

			if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	return cmd
}
