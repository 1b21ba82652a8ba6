/*
 * Machine configuration
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

type Config struct {
	// Files is the maximum number of open files, as DOS FILES=
	Files int `toml:"files"`
	// Scripts are Lua multiplex handlers, registered in order so the
	// last one listed is offered calls first
	Scripts []string  `toml:"scripts"`
	Log     LogConfig `toml:"log"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// File is written as JSON alongside the console, rotated by size
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

func DefaultConfig() Config {
	return Config{
		Files: 127,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// LoadConfig reads a TOML config file over the defaults.  Relative
// script paths are taken as relative to the config file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config")
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: %s", path)
	}
	for i, s := range cfg.Scripts {
		if s != "" && !filepath.IsAbs(s) {
			cfg.Scripts[i] = filepath.Join(filepath.Dir(path), s)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Files < 1 || c.Files > 255 {
		return errors.Errorf("files out of range 1-255: %d", c.Files)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errors.New("log rotation values must not be negative")
	}
	for _, s := range c.Scripts {
		if s == "" {
			return errors.New("empty script path")
		}
	}
	return nil
}
