package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

var DefaultIndexerConfig = IndexerConfig{
	BlockDataFilename:        "%08d/%d.json",
	BlockDataBucketSize:      10000,
	BlockDataWaitingInterval: time.Second,
	MongoDB:                  DefaultMongoDBConfig,
	Log:                      zap.NewProductionConfig(),
}

type IndexerConfig struct {
	BlockDataDir             string        `yaml:"block_data_dir"`
	BlockDataFilename        string        `yaml:"block_data_filename"`
	BlockDataBucketSize      int           `yaml:"block_data_bucket_size"`
	BlockDataWaitingInterval time.Duration `yaml:"block_data_waiting_interval"`
	RPCEndpoint              string        `yaml:"rpc_endpoint"`
	MongoDB                  MongoDBConfig `yaml:"mongodb"`
	Log                      zap.Config    `yaml:"log"`
}

func (cfg IndexerConfig) Validate() error {
	if cfg.BlockDataDir == "" {
		return fmt.Errorf("'block_data_dir' is required")
	}
	if cfg.BlockDataBucketSize <= 0 {
		return fmt.Errorf("'block_data_bucket_size' must be positive")
	}
	return nil
}
