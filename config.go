package pointsync

import (
	"fmt"
	"os"

	"github.com/gekko3d/pointsync/rt/core"
	"github.com/gekko3d/pointsync/rt/points"

	"gopkg.in/yaml.v3"
)

// Config is the construction surface for both point adapters.
//
// Example:
//
//	buffer:
//	  maxParticles: 256
//	  drawRange: 1.0
//	offset:
//	  maxParticles: 1024
//	log:
//	  prefix: points
//	  debug: false
type Config struct {
	Buffer BufferConfig `yaml:"buffer"`
	Offset OffsetConfig `yaml:"offset"`
	Log    LogConfig    `yaml:"log"`
}

type BufferConfig struct {
	// MaxParticles is the initial capacity; 0 starts small and grows.
	MaxParticles int `yaml:"maxParticles"`
	// DrawRange is the initial visible fraction; unset means fully visible.
	DrawRange *float32 `yaml:"drawRange"`
}

type OffsetConfig struct {
	// MaxParticles is the fixed point count; 0 uses the default.
	MaxParticles int `yaml:"maxParticles"`
}

type LogConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Prefix: "pointsync"},
	}
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read points config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse points config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid points config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Buffer.MaxParticles < 0 {
		return fmt.Errorf("buffer.maxParticles must be >= 0, got %d", c.Buffer.MaxParticles)
	}
	if c.Offset.MaxParticles < 0 {
		return fmt.Errorf("offset.maxParticles must be >= 0, got %d", c.Offset.MaxParticles)
	}
	if r := c.Buffer.DrawRange; r != nil && !(*r >= 0 && *r <= 1) {
		return fmt.Errorf("buffer.drawRange must be within [0,1], got %g", *r)
	}
	return nil
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger() core.Logger {
	return core.NewDefaultLogger(c.Log.Prefix, c.Log.Debug)
}

// NewBufferAdapter builds a compacting adapter from the buffer section.
func (c *Config) NewBufferAdapter(logger core.Logger) *points.BufferPointsAdapter {
	return points.NewBufferPointsAdapter(points.BufferOptions{
		MaxParticles: c.Buffer.MaxParticles,
		DrawRange:    c.Buffer.DrawRange,
		Logger:       logger,
	})
}

// NewOffsetAdapter builds an offset adapter from the offset section.
func (c *Config) NewOffsetAdapter(logger core.Logger) *points.OffsetPointsAdapter {
	return points.NewOffsetPointsAdapter(points.OffsetOptions{
		MaxParticles: c.Offset.MaxParticles,
		Logger:       logger,
	})
}
