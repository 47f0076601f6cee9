package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

var DefaultConfig = Config{
	Network: DefaultNetworkName,
	Indexer: DefaultIndexerConfig,
	Server:  DefaultServerConfig,
}

type Config struct {
	Network string        `yaml:"network"`
	Indexer IndexerConfig `yaml:"indexer"`
	Server  ServerConfig  `yaml:"server"`
}

func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg := DefaultConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
