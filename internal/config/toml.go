// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/readlog/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Stats StatsConfig `toml:"stats"`
	Read  ReadConfig  `toml:"read"`
	Log   LogConfig   `toml:"log"`
}

// StatsConfig maps analytics settings.
type StatsConfig struct {
	StreakPolicy *string `toml:"streak-policy"`
	WeekStart    *string `toml:"week-start"`
	Days         *int    `toml:"days"`
	Weeks        *int    `toml:"weeks"`
	Months       *int    `toml:"months"`
}

// ReadConfig maps reading session settings.
type ReadConfig struct {
	WPMMinSeconds *int `toml:"wpm-min-seconds"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ParsePolicy validates a streak policy name.
func ParsePolicy(name string) (model.StreakPolicy, error) {
	switch model.StreakPolicy(strings.TrimSpace(strings.ToLower(name))) {
	case model.StreakStrict:
		return model.StreakStrict, nil
	case model.StreakLenient:
		return model.StreakLenient, nil
	default:
		return "", fmt.Errorf("invalid streak policy %q (use strict or lenient)", name)
	}
}

// ParseWeekday accepts full or three-letter English day names.
func ParseWeekday(name string) (time.Weekday, error) {
	normalized := strings.TrimSpace(strings.ToLower(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if normalized == full || normalized == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid week start %q", name)
}
