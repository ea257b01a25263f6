// Package config loads solver and service tunables from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"teams/solver"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type SearchConfig struct {
	Seed         int64         `yaml:"seed"`
	Timeout      time.Duration `yaml:"timeout"`        // zero runs until interrupted
	MaxSteps     int           `yaml:"max_steps"`      // zero is unbounded
	PathCostStep int           `yaml:"path_cost_step"` // growth of g per expansion
}

// Options converts the search settings into solver options.
func (c SearchConfig) Options() solver.Options {
	return solver.Options{
		Seed:         c.Seed,
		MaxSteps:     c.MaxSteps,
		PathCostStep: c.PathCostStep,
	}
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	SolveTimeout    time.Duration `yaml:"solve_timeout"`     // used when a request names none
	MaxSolveTimeout time.Duration `yaml:"max_solve_timeout"` // upper bound for requests
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads path, fills unset fields with defaults and validates the
// result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.SolveTimeout == 0 {
		cfg.Server.SolveTimeout = 5 * time.Second
	}
	if cfg.Server.MaxSolveTimeout == 0 {
		cfg.Server.MaxSolveTimeout = time.Minute
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "teams"
	}
}

func validate(cfg *Config) error {
	switch {
	case cfg.Search.Timeout < 0:
		return fmt.Errorf("%w: search.timeout must not be negative", ErrInvalid)
	case cfg.Search.MaxSteps < 0:
		return fmt.Errorf("%w: search.max_steps must not be negative", ErrInvalid)
	case cfg.Search.PathCostStep < 0:
		return fmt.Errorf("%w: search.path_cost_step must not be negative", ErrInvalid)
	case cfg.Server.SolveTimeout < 0 || cfg.Server.MaxSolveTimeout < 0:
		return fmt.Errorf("%w: server timeouts must not be negative", ErrInvalid)
	case cfg.Server.SolveTimeout > cfg.Server.MaxSolveTimeout:
		return fmt.Errorf("%w: server.solve_timeout exceeds server.max_solve_timeout", ErrInvalid)
	}
	return nil
}
