package main

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const (
	defaultBitsize = 32
	defaultParties = 2
)

type Config struct {
	// Range proof bit width, a power of two up to 64
	Bitsize int64 `yaml:"bitsize"`
	// Aggregation capacity, one slot more than the receivers per transfer
	Parties int64 `yaml:"parties"`
	// Verify inner products with one multi-exponentiation
	OptimizedVerify *bool `yaml:"optimizedVerify"`
	Debug           bool  `yaml:"debug"`
}

// WithDefaults returns a copy of the Config with any missing fields set to
// their default values.
func (c Config) WithDefaults() Config {
	cpy := c
	if cpy.Bitsize == 0 {
		cpy.Bitsize = defaultBitsize
	}
	if cpy.Parties == 0 {
		cpy.Parties = defaultParties
	}
	if cpy.OptimizedVerify == nil {
		optimized := true
		cpy.OptimizedVerify = &optimized
	}
	return cpy
}

func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg.WithDefaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	return cfg.WithDefaults(), nil
}

func (c Config) Logger() (*zap.Logger, error) {
	if c.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
