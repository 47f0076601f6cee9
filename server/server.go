package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/koyo-finance/exchange-backend/config"
	"github.com/koyo-finance/exchange-backend/schema"
	"github.com/koyo-finance/exchange-backend/service/store"
)

type Server struct {
	*echo.Echo
	cfg    config.ServerConfig
	st     store.Store
	rp     *redis.Pool
	logger *zap.Logger
}

func New(cfg config.ServerConfig, st store.Store, rp *redis.Pool, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	s := &Server{e, cfg, st, rp, logger}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.GET("/status", s.GetStatus)
	s.GET("/pools", s.GetPools)
	s.GET("/pools/:id", s.GetPool)
	s.GET("/prices", s.GetPrices)
	s.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Server) GetStatus(c echo.Context) error {
	var resp schema.StatusResponse
	if err := RetryLoadingCache(c.Request().Context(), func(ctx context.Context) error {
		var err error
		resp, err = s.LoadStatusCache(ctx)
		return err
	}, s.cfg.CacheLoadTimeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return echo.NewHTTPError(http.StatusInternalServerError, "no status data found")
		}
		return fmt.Errorf("load cache: %w", err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) GetPools(c echo.Context) error {
	var resp schema.PoolsResponse
	if err := RetryLoadingCache(c.Request().Context(), func(ctx context.Context) error {
		var err error
		resp, err = s.LoadPoolsCache(ctx)
		return err
	}, s.cfg.CacheLoadTimeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return echo.NewHTTPError(http.StatusInternalServerError, "no pool data found")
		}
		return fmt.Errorf("load cache: %w", err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) GetPool(c echo.Context) error {
	id := c.Param("id")
	var pools schema.PoolsResponse
	if err := RetryLoadingCache(c.Request().Context(), func(ctx context.Context) error {
		var err error
		pools, err = s.LoadPoolsCache(ctx)
		return err
	}, s.cfg.CacheLoadTimeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return echo.NewHTTPError(http.StatusInternalServerError, "no pool data found")
		}
		return fmt.Errorf("load cache: %w", err)
	}
	for _, p := range pools.Pools {
		if p.ID == id {
			return c.JSON(http.StatusOK, schema.PoolResponse{
				Pool:      p,
				UpdatedAt: pools.UpdatedAt,
			})
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "pool not found")
}

func (s *Server) GetPrices(c echo.Context) error {
	var resp schema.PricesResponse
	if err := RetryLoadingCache(c.Request().Context(), func(ctx context.Context) error {
		var err error
		resp, err = s.LoadPricesCache(ctx)
		return err
	}, s.cfg.CacheLoadTimeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return echo.NewHTTPError(http.StatusInternalServerError, "no price data found")
		}
		return fmt.Errorf("load cache: %w", err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}
