package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Planner holds all configuration for the farmplan binary.
type Planner struct {
	// Input document produced by the crop-data extractor (JSON or YAML).
	DefsPath string `yaml:"defs_path"`

	// Plan run cache. Empty disables it.
	DatabaseDSN string `yaml:"database_dsn"`

	// Logging: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Search
	Season            string `yaml:"season"`
	MaxKinds          int    `yaml:"max_kinds"`
	TopN              int    `yaml:"top_n"`   // 0 = all plans
	Workers           int    `yaml:"workers"` // 0 = GOMAXPROCS
	AllowRandomSeed   bool   `yaml:"allow_randomseed"`
	PreferFixedLayout bool   `yaml:"prefer_fixed_layout"`

	// Plot geometry
	TileShape []int  `yaml:"tile_shape"` // [width, height] in tiles
	PitMode   string `yaml:"pit_mode"`   // "8", "9" or "10"
}

// DefaultPlanner returns Planner config with sensible defaults.
func DefaultPlanner() Planner {
	return Planner{
		DefsPath: "data/index/farming_defs.json",
		LogLevel: "info",
		MaxKinds: 3,
		TopN:     12,
	}
}

// Shape returns TileShape as (width, height). ok is false unless exactly two
// positive values are configured.
func (p Planner) Shape() (width, height int, ok bool) {
	if len(p.TileShape) != 2 || p.TileShape[0] <= 0 || p.TileShape[1] <= 0 {
		return 0, 0, false
	}
	return p.TileShape[0], p.TileShape[1], true
}

// LoadPlanner loads planner config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadPlanner(path string) (Planner, error) {
	cfg := DefaultPlanner()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
