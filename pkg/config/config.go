// Package config loads the geometry constants of a coloring engine from TOML.
//
// A config file only needs to name the values it overrides; every other field
// keeps its [Default]:
//
//	node_radius = 12
//	protected_zone = 90
//
//	[seed_a]
//	x = 20
//	y = 80
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fourcolor/pkg/errors"
)

// appName is used for the default config directory.
const appName = "fourcolor"

// Point is a position in canvas coordinates. Y grows downward.
type Point struct {
	X float64 `toml:"x" json:"x"`
	Y float64 `toml:"y" json:"y"`
}

// Config holds engine geometry and walk limits.
type Config struct {
	// Seed node positions. The boundary walk starts along SeedA → SeedB, so
	// the seeds should sit in the top-left corner of the canvas.
	SeedA Point `toml:"seed_a"`
	SeedB Point `toml:"seed_b"`

	// NodeRadius drives placement push-away: a node dropped closer than
	// 3×radius to another is moved out to 4×radius along the same ray.
	NodeRadius float64 `toml:"node_radius"`

	// ProtectedZone rejects placements with both x and y below this value.
	ProtectedZone float64 `toml:"protected_zone"`

	// MinHandleDistance is the closest a curved edge midpoint may come to
	// either endpoint.
	MinHandleDistance float64 `toml:"min_handle_distance"`

	// MinAngleGap is the angular gap in degrees below which two edges at a
	// node produce an advisory warning.
	MinAngleGap float64 `toml:"min_angle_gap"`

	// SafetyFactor bounds the boundary walk at factor × node count steps.
	SafetyFactor int `toml:"safety_factor"`

	// Canvas bounds used by renderers and the terminal session.
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SeedA:             Point{X: 15, Y: 60},
		SeedB:             Point{X: 60, Y: 15},
		NodeRadius:        10,
		ProtectedZone:     75,
		MinHandleDistance: 20,
		MinAngleGap:       10,
		SafetyFactor:      2,
		Width:             800,
		Height:            500,
	}
}

// Load reads a TOML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault loads path if it is non-empty, otherwise the file at
// DefaultPath if one exists, otherwise Default.
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	p, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(p); err != nil {
		return Default(), nil
	}
	return Load(p)
}

// Validate checks that every value is usable by the engine.
func (c Config) Validate() error {
	for _, p := range []struct {
		name string
		pt   Point
	}{{"seed_a", c.SeedA}, {"seed_b", c.SeedB}} {
		if err := errors.ValidatePoint(p.pt.X, p.pt.Y); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", p.name)
		}
	}
	if c.SeedA == c.SeedB {
		return errors.New(errors.ErrCodeInvalidConfig, "seed_a and seed_b must differ")
	}
	if c.NodeRadius <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "node_radius must be positive, got %v", c.NodeRadius)
	}
	if c.ProtectedZone < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "protected_zone must not be negative, got %v", c.ProtectedZone)
	}
	if c.MinHandleDistance < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "min_handle_distance must not be negative, got %v", c.MinHandleDistance)
	}
	if c.MinAngleGap < 0 || c.MinAngleGap >= 360 {
		return errors.New(errors.ErrCodeInvalidConfig, "min_angle_gap must be in [0,360), got %v", c.MinAngleGap)
	}
	if c.SafetyFactor < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "safety_factor must be at least 1, got %d", c.SafetyFactor)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas must have positive size, got %vx%v", c.Width, c.Height)
	}
	return nil
}

// DefaultPath returns the config file location using the XDG standard
// (~/.config/fourcolor/config.toml).
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
