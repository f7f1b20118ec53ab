// Package config loads the .ganttloom.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = ".ganttloom"

// Config holds the tunable parameters of the scheduling engine and its CLI.
type Config struct {
	WorkdaysPerWeek int     `yaml:"workdays_per_week"`
	HoursPerDay     float64 `yaml:"hours_per_day"`
	HorizonDays     int     `yaml:"horizon_days"`
	Enrich          Enrich  `yaml:"enrich"`
}

// Enrich configures the optional narrative call.
type Enrich struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		WorkdaysPerWeek: 5,
		HoursPerDay:     8,
		HorizonDays:     14,
		Enrich: Enrich{
			Enabled:        false,
			Model:          "",
			TimeoutSeconds: 30,
		},
	}
}

// Load reads .ganttloom.yaml from basePath via viper. A missing file yields
// the defaults; a malformed one is an error.
func Load(basePath string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(basePath)

	// Viper defaults so missing keys fall back gracefully.
	v.SetDefault("workdays_per_week", cfg.WorkdaysPerWeek)
	v.SetDefault("hours_per_day", cfg.HoursPerDay)
	v.SetDefault("horizon_days", cfg.HorizonDays)
	v.SetDefault("enrich.enabled", cfg.Enrich.Enabled)
	v.SetDefault("enrich.model", cfg.Enrich.Model)
	v.SetDefault("enrich.timeout_seconds", cfg.Enrich.TimeoutSeconds)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.WorkdaysPerWeek = v.GetInt("workdays_per_week")
	cfg.HoursPerDay = v.GetFloat64("hours_per_day")
	cfg.HorizonDays = v.GetInt("horizon_days")
	cfg.Enrich.Enabled = v.GetBool("enrich.enabled")
	cfg.Enrich.Model = v.GetString("enrich.model")
	cfg.Enrich.TimeoutSeconds = v.GetInt("enrich.timeout_seconds")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the calendar cannot express.
func (c *Config) Validate() error {
	if c.WorkdaysPerWeek < 1 || c.WorkdaysPerWeek > 7 {
		return fmt.Errorf("workdays_per_week must be 1-7, got %d", c.WorkdaysPerWeek)
	}
	if c.HoursPerDay <= 0 || c.HoursPerDay > 24 {
		return fmt.Errorf("hours_per_day must be in (0, 24], got %g", c.HoursPerDay)
	}
	if c.HorizonDays < 0 {
		return fmt.Errorf("horizon_days must be non-negative, got %d", c.HorizonDays)
	}
	return nil
}

// Save writes the configuration to basePath/.ganttloom.yaml atomically
// (temp file then rename).
func (c *Config) Save(basePath string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	content, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(basePath, FileName+".yaml")
	tmp, err := os.CreateTemp(basePath, ".ganttloom-tmp-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
