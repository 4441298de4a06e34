// Package config loads server settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"newomega/server/internal/combat"
	"newomega/server/logging"
)

// Config is the complete server configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Store   Store   `yaml:"store"`
	Logging Logging `yaml:"logging"`
	Rules   Rules   `yaml:"rules"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	EnablePprof     bool          `yaml:"enable_pprof"`
}

type Store struct {
	// Path of the SQLite database. ":memory:" keeps fights in memory only.
	Path string `yaml:"path"`
}

type Logging struct {
	Sinks           []string `yaml:"sinks"`
	MinimumSeverity string   `yaml:"minimum_severity"`
	JSONPath        string   `yaml:"json_path"`
	BufferSize      int      `yaml:"buffer_size"`
}

type Rules struct {
	MaxRounds      int           `yaml:"max_rounds"`
	SimulateBudget time.Duration `yaml:"simulate_budget"`
	SeedRoot       string        `yaml:"seed_root"`
	ListLimit      int           `yaml:"list_limit"`
	VerifyWorkers  int           `yaml:"verify_workers"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Store: Store{Path: "data/fights.db"},
		Logging: Logging{
			Sinks:           []string{"console"},
			MinimumSeverity: "info",
			BufferSize:      512,
		},
		Rules: Rules{
			MaxRounds:      combat.DefaultMaxRounds,
			SimulateBudget: 250 * time.Millisecond,
			SeedRoot:       "newomega",
			ListLimit:      50,
			VerifyWorkers:  4,
		},
	}
}

// Normalized fills unset fields with defaults.
func (c Config) Normalized() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = def.Store.Path
	}
	if len(c.Logging.Sinks) == 0 {
		c.Logging.Sinks = def.Logging.Sinks
	}
	if c.Logging.MinimumSeverity == "" {
		c.Logging.MinimumSeverity = def.Logging.MinimumSeverity
	}
	if c.Logging.BufferSize <= 0 {
		c.Logging.BufferSize = def.Logging.BufferSize
	}
	if c.Rules.MaxRounds == 0 {
		c.Rules.MaxRounds = def.Rules.MaxRounds
	}
	if c.Rules.SeedRoot == "" {
		c.Rules.SeedRoot = def.Rules.SeedRoot
	}
	if c.Rules.ListLimit <= 0 {
		c.Rules.ListLimit = def.Rules.ListLimit
	}
	if c.Rules.VerifyWorkers <= 0 {
		c.Rules.VerifyWorkers = def.Rules.VerifyWorkers
	}
	return c
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Rules.MaxRounds < 0 {
		errs = append(errs, fmt.Errorf("rules.max_rounds must not be negative, got %d", c.Rules.MaxRounds))
	}
	if _, err := logging.ParseSeverity(c.Logging.MinimumSeverity); err != nil {
		errs = append(errs, fmt.Errorf("logging.minimum_severity: %w", err))
	}
	for _, sink := range c.Logging.Sinks {
		switch sink {
		case "console":
		case "json":
			if c.Logging.JSONPath == "" {
				errs = append(errs, errors.New("logging.json_path is required for the json sink"))
			}
		default:
			errs = append(errs, fmt.Errorf("logging.sinks: unknown sink %q", sink))
		}
	}
	return errors.Join(errs...)
}

// LoggingConfig translates the logging section for logging.NewRouter.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = append([]string(nil), c.Logging.Sinks...)
	if c.Logging.BufferSize > 0 {
		cfg.BufferSize = c.Logging.BufferSize
	}
	if severity, err := logging.ParseSeverity(c.Logging.MinimumSeverity); err == nil {
		cfg.MinimumSeverity = severity
	}
	cfg.JSON.FilePath = c.Logging.JSONPath
	return cfg
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg.Normalized(), nil
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return Config{}, err
		}
	}
	cfg, err := ApplyEnv(cfg, os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from OMEGA_* variables read through lookup.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	if raw, ok := lookup("OMEGA_ADDR"); ok && raw != "" {
		cfg.Server.Addr = raw
	}
	if raw, ok := lookup("OMEGA_DB_PATH"); ok && raw != "" {
		cfg.Store.Path = raw
	}
	if raw, ok := lookup("OMEGA_MAX_ROUNDS"); ok && raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OMEGA_MAX_ROUNDS=%q: %w", raw, err)
		}
		cfg.Rules.MaxRounds = value
	}
	if raw, ok := lookup("OMEGA_LOG_LEVEL"); ok && raw != "" {
		cfg.Logging.MinimumSeverity = raw
	}
	if raw, ok := lookup("OMEGA_ENABLE_PPROF"); ok && raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OMEGA_ENABLE_PPROF=%q: %w", raw, err)
		}
		cfg.Server.EnablePprof = value
	}
	return cfg, nil
}
