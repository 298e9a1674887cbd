package canopy

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Config configures a Scene. The zero value is usable: a zero CellSize
// selects DefaultCellSize and culling is on.
type Config struct {
	// CellSize is the spatial grid cell edge in world units.
	CellSize float64 `yaml:"cell_size"`
	// DisableCulling draws every live entity regardless of the viewport.
	DisableCulling bool `yaml:"disable_culling"`
	// Debug enables tree warnings and per-frame stats logging.
	Debug bool `yaml:"debug"`
	// ClearColor fills the window behind the scene when hosted by Run.
	ClearColor Color `yaml:"clear_color"`
}

// DefaultConfig returns the default scene configuration.
func DefaultConfig() Config {
	return Config{CellSize: DefaultCellSize}
}

// Validate reports whether the config can build a scene.
func (c Config) Validate() error {
	if !(c.CellSize > 0) || math.IsInf(c.CellSize, 0) {
		return fmt.Errorf("%w: cell size %v", ErrInvalidConfig, c.CellSize)
	}
	return nil
}

// LoadConfig parses a YAML document over DefaultConfig and validates it.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
