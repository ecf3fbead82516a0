package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"FARM_PORT"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"FARM_SQLITE_PATH"`
	} `yaml:"database"`
	Simulation struct {
		FarmFile    string `yaml:"farm_file" env:"FARM_FILE"`
		WarmupSteps int    `yaml:"warmup_steps" env:"FARM_WARMUP_STEPS"`
		// StepCron advances one step per tick. Empty disables scheduled stepping.
		StepCron string `yaml:"step_cron" env:"FARM_STEP_CRON"`
	} `yaml:"simulation"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Defaults
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "./data/farm.db"
	}
	if cfg.Simulation.FarmFile == "" {
		cfg.Simulation.FarmFile = "./farm.yaml"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.Simulation.FarmFile == "" {
		return fmt.Errorf("simulation.farm_file is required")
	}
	if c.Simulation.WarmupSteps < 0 {
		return fmt.Errorf("simulation.warmup_steps must not be negative")
	}
	if c.Simulation.StepCron != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Simulation.StepCron); err != nil {
			return fmt.Errorf("simulation.step_cron: %w", err)
		}
	}
	return nil
}
