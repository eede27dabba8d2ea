// Package config loads engine configuration from TOML files and selects the
// persistence backend. A missing file yields the defaults, so the engine
// works out of the box.
package config

import (
	"context"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lanefold/lanefold/pkg/errors"
	"github.com/lanefold/lanefold/pkg/family"
	"github.com/lanefold/lanefold/pkg/layout/cost"
	"github.com/lanefold/lanefold/pkg/layout/genetic"
	"github.com/lanefold/lanefold/pkg/store"
)

// Backend names accepted in the [store] section.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the full engine configuration.
type Config struct {
	Genetic   genetic.Params  `toml:"genetic"`
	Weights   cost.Weights    `toml:"weights"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Store     StoreConfig     `toml:"store"`
}

// DiscoveryConfig tunes family discovery.
type DiscoveryConfig struct {
	// MinNodes is the smallest component registered as a family.
	MinNodes int `toml:"min_nodes"`

	// ReferenceYear substitutes for unknown dissolution years. Zero means
	// the current year.
	ReferenceYear int `toml:"reference_year"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend string            `toml:"backend"`
	Path    string            `toml:"path"` // file backend root directory
	Redis   store.RedisConfig `toml:"redis"`
	Mongo   store.MongoConfig `toml:"mongo"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Genetic: genetic.DefaultParams(),
		Weights: cost.DefaultWeights(),
		Discovery: DiscoveryConfig{
			MinNodes: family.DefaultMinNodes,
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    ".lanefold",
			Redis:   store.RedisConfig{Addr: "localhost:6379"},
			Mongo:   store.MongoConfig{URI: "mongodb://localhost:27017", Database: "lanefold"},
		},
	}
}

// Load reads the configuration at path, layered over the defaults. A missing
// file is not an error: the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Genetic.Validate(); err != nil {
		return err
	}
	if err := c.Weights.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "weights")
	}
	if c.Discovery.MinNodes < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "discovery min_nodes must be positive, got %d", c.Discovery.MinNodes)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendFile && c.Store.Path == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "file backend requires store.path")
	}
	return nil
}

// OpenStore constructs the configured persistence backend.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case BackendMemory:
		return store.NewMemoryStore(), nil
	case BackendFile:
		return store.NewFileStore(c.Store.Path)
	case BackendRedis:
		return store.NewRedisStore(ctx, c.Store.Redis)
	case BackendMongo:
		return store.NewMongoStore(ctx, c.Store.Mongo)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
}
