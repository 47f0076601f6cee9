package config

var DefaultMongoDBConfig = MongoDBConfig{
	URI: "mongodb://localhost:27017",
	DB:  "exchange",
}

type MongoDBConfig struct {
	URI string `yaml:"uri"`
	DB  string `yaml:"db"`
}

var DefaultRedisConfig = RedisConfig{
	URI:                "redis://localhost:6379",
	StatusCacheKey:     "exchange:status",
	PoolsCacheKey:      "exchange:pools",
	PricesCacheKey:     "exchange:prices",
	MaxIdleConnections: 5,
}

type RedisConfig struct {
	URI                string `yaml:"uri"`
	StatusCacheKey     string `yaml:"status_cache_key"`
	PoolsCacheKey      string `yaml:"pools_cache_key"`
	PricesCacheKey     string `yaml:"prices_cache_key"`
	MaxIdleConnections int    `yaml:"max_idle_connections"`
}
