package ballcube

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aknopov/ballcube/precomp"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfig = errors.New("invalid configuration")
)

// Estimator settings, usually loaded from a YAML file
type Config struct {
	Precision int    `yaml:"precision"` // bits, 0 - default
	Terms     int    `yaml:"terms"`     // 0 - default for dimension
	CacheDir  string `yaml:"cacheDir"`  // "" - precomp.DefaultDir
	NoCache   bool   `yaml:"noCache"`   // keep terms in memory only
	Verbose   bool   `yaml:"verbose"`
}

// Reads configuration from a YAML file
func LoadConfig(path string) (Config, error) {
	var cfg Config

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w in %s: %v", ErrConfig, path, err)
	}

	return cfg, cfg.Validate()
}

// Checks value ranges
func (c Config) Validate() error {
	if c.Precision < 0 {
		return fmt.Errorf("%w: %w", ErrConfig, ErrPrecision)
	}
	if c.Terms < 0 {
		return fmt.Errorf("%w: %w", ErrConfig, ErrTerms)
	}
	return nil
}

// Creates estimator with the configured settings
func (c Config) Estimator() *Estimator {
	opts := []Option{WithPrecision(c.Precision), WithTerms(c.Terms)}
	if !c.NoCache {
		cache := precomp.New(c.CacheDir)
		cache.Verbose = c.Verbose
		opts = append(opts, WithCache(cache))
	}
	return New(opts...)
}
