package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/koyo-finance/exchange-backend/util"
)

func (s *Server) RunBackgroundUpdater(ctx context.Context) error {
	ticker := util.NewImmediateTicker(s.cfg.CacheUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.logger.Debug("updating caches")
			if err := s.UpdateCaches(ctx); err != nil {
				s.logger.Error("failed to update caches", zap.Error(err))
			}
		}
	}
}

func (s *Server) UpdateCaches(ctx context.Context) error {
	eg, ctx2 := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := s.UpdateStatusCache(ctx2); err != nil {
			return fmt.Errorf("update status cache: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		if err := s.UpdatePoolsCache(ctx2); err != nil {
			return fmt.Errorf("update pools cache: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		if err := s.UpdatePricesCache(ctx2); err != nil {
			return fmt.Errorf("update prices cache: %w", err)
		}
		return nil
	})
	return eg.Wait()
}
