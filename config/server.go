package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

var DefaultServerConfig = ServerConfig{
	Debug:               false,
	BindAddr:            "0.0.0.0:8080",
	CacheLoadTimeout:    10 * time.Second,
	CacheUpdateInterval: 5 * time.Second,
	MongoDB:             DefaultMongoDBConfig,
	Redis:               DefaultRedisConfig,
	Log:                 zap.NewProductionConfig(),
}

type ServerConfig struct {
	Debug               bool          `yaml:"debug"`
	BindAddr            string        `yaml:"bind_addr"`
	CacheLoadTimeout    time.Duration `yaml:"cache_load_timeout"`
	CacheUpdateInterval time.Duration `yaml:"cache_update_interval"`
	MongoDB             MongoDBConfig `yaml:"mongodb"`
	Redis               RedisConfig   `yaml:"redis"`
	Log                 zap.Config    `yaml:"log"`
}

func (cfg ServerConfig) Validate() error {
	if cfg.BindAddr == "" {
		return fmt.Errorf("'bind_addr' is required")
	}
	if cfg.CacheLoadTimeout <= 0 {
		return fmt.Errorf("'cache_load_timeout' must be positive")
	}
	if cfg.CacheUpdateInterval <= 0 {
		return fmt.Errorf("'cache_update_interval' must be positive")
	}
	return nil
}
