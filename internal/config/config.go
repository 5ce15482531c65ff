package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"OptionPrisma/internal/logger"
	"OptionPrisma/internal/model"
	"OptionPrisma/internal/store"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Mode         string        `yaml:"mode"` // gin mode: debug, release, test
	} `yaml:"server"`
	Pricing struct {
		Workers            int `yaml:"workers"` // 0 means GOMAXPROCS
		DefaultSimulations int `yaml:"default_simulations"`
	} `yaml:"pricing"`
	Storage struct {
		Driver     string `yaml:"driver"`
		Path       string `yaml:"path"`
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"storage"`
	Retention struct {
		MaxAge time.Duration `yaml:"max_age"` // 0 disables pruning
		Cron   string        `yaml:"cron"`
	} `yaml:"retention"`
	Log logger.Config `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults cover every field.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("OPTIONPRISMA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("OPTIONPRISMA_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("OPTIONPRISMA_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("OPTIONPRISMA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("OPTIONPRISMA_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OPTIONPRISMA_WORKERS: %w", err)
		}
		c.Pricing.Workers = n
	}
	if v := os.Getenv("OPTIONPRISMA_RETENTION_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("OPTIONPRISMA_RETENTION_MAX_AGE: %w", err)
		}
		c.Retention.MaxAge = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Pricing.Workers == 0 {
		c.Pricing.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Pricing.DefaultSimulations == 0 {
		c.Pricing.DefaultSimulations = model.DefaultSimulations
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = store.DriverSQLite
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case store.DriverJSON:
			c.Storage.Path = "data/simulations.json"
		default:
			c.Storage.Path = "data/optionprisma.db"
		}
	}
	if c.Retention.Cron == "" {
		c.Retention.Cron = "0 0 3 * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 30
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Pricing.Workers < 1 {
		return fmt.Errorf("pricing.workers must be positive")
	}
	if c.Pricing.DefaultSimulations < model.MinSimulations || c.Pricing.DefaultSimulations > model.MaxSimulations {
		return fmt.Errorf("pricing.default_simulations must be between %d and %d",
			model.MinSimulations, model.MaxSimulations)
	}
	switch c.Storage.Driver {
	case store.DriverSQLite, store.DriverJSON, store.DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, json, memory", c.Storage.Driver)
	}
	if c.Storage.MaxRetries < 0 {
		return fmt.Errorf("storage.max_retries cannot be negative")
	}
	if c.Retention.MaxAge < 0 {
		return fmt.Errorf("retention.max_age cannot be negative")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q is not one of debug, release, test", c.Server.Mode)
	}
	return nil
}
