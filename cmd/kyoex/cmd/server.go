package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/config"
	"github.com/koyo-finance/exchange-backend/server"
	"github.com/koyo-finance/exchange-backend/service/store"
)

func ServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "run web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load("config.yml")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Server.Validate(); err != nil {
				return fmt.Errorf("validate server config: %w", err)
			}

			logger, err := cfg.Server.Log.Build()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			mc, err := mongo.Connect(context.Background(),
				options.Client().ApplyURI(cfg.Server.MongoDB.URI).SetRegistry(store.Registry()))
			if err != nil {
				return fmt.Errorf("connect mongodb: %w", err)
			}
			defer mc.Disconnect(context.Background())

			st := store.NewService(cfg.Server.MongoDB, mc)
			rp := &redis.Pool{
				DialContext: func(ctx context.Context) (redis.Conn, error) {
					return redis.DialURLContext(ctx, cfg.Server.Redis.URI)
				},
				MaxIdle: cfg.Server.Redis.MaxIdleConnections,
			}
			defer rp.Close()

			s := server.New(cfg.Server, st, rp, logger)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				if err := s.RunBackgroundUpdater(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("background updater stopped", zap.Error(err))
				}
			}()
			go func() {
				defer wg.Done()
				logger.Info("starting server", zap.String("addr", cfg.Server.BindAddr))
				if err := s.Start(cfg.Server.BindAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("failed to start server", zap.Error(err))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)
			<-quit

			logger.Info("gracefully shutting down")
			cancel()
			if err := s.ShutdownWithTimeout(10 * time.Second); err != nil {
				logger.Fatal("failed to shutdown server", zap.Error(err))
			}
			wg.Wait()

			return nil
		},
	}
	return cmd
}
