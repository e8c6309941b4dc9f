// Package config loads the YAML settings of the render CLI and the chart
// server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/satindergrewal/astrochart"
)

var validate = validator.New()

type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stderr"`
	} `yaml:"log"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		BodyLimit       string        `yaml:"body_limit" default:"64K"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics" validate:"startswith=/"`
	} `yaml:"metrics"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" default:"localhost:6379" validate:"required_if=Enabled true"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" validate:"gte=0"`
		Prefix   string        `yaml:"prefix" default:"astrochart"`
		TTL      time.Duration `yaml:"ttl" default:"1h"`
	} `yaml:"redis"`
	Chart Chart `yaml:"chart"`
}

// Chart holds the drawing settings, see astrochart.Config.
type Chart struct {
	Width                float64  `yaml:"width" default:"800" validate:"gt=0"`
	Height               float64  `yaml:"height" default:"800" validate:"gt=0"`
	Margin               float64  `yaml:"margin" default:"50" validate:"gte=0"`
	PointCollisionRadius float64  `yaml:"point_collision_radius" default:"12" validate:"gt=0"`
	CuspCollisionDegrees float64  `yaml:"cusp_collision_degrees" default:"10" validate:"gte=0,lte=180"`
	MaxLayoutPasses      int      `yaml:"max_layout_passes" default:"5000" validate:"gt=0"`
	StrokeWidth          float64  `yaml:"stroke_width" default:"1" validate:"gt=0"`
	Colors               Colors   `yaml:"colors"`
	Aspects              []Aspect `yaml:"aspects" validate:"dive"`
}

type Colors struct {
	Background string `yaml:"background" default:"#ffffff" validate:"hexcolor"`
	Stroke     string `yaml:"stroke" default:"#333333" validate:"hexcolor"`
	Points     string `yaml:"points" default:"#000000" validate:"hexcolor"`
	Signs      string `yaml:"signs" default:"#444444" validate:"hexcolor"`
}

// Aspect is an aspect definition with an optional line color. Aspects
// without a color are found but not drawn.
type Aspect struct {
	Name  string  `yaml:"name" validate:"required"`
	Angle float64 `yaml:"angle" validate:"gte=0,lte=180"`
	Orb   float64 `yaml:"orb" validate:"gte=0"`
	Color string  `yaml:"color" validate:"omitempty,hexcolor"`
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	return Parse(nil)
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// LoadWithEnv loads config from YAML, or defaults when path is empty, and
// applies ASTROCHART_* environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if path == "" {
		c, err = Default()
	} else {
		c, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ASTROCHART_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ASTROCHART_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ASTROCHART_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("ASTROCHART_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("ASTROCHART_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(c.Chart.Aspects) == 0 {
		c.Chart.Aspects = DefaultAspects()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Chart.Radius() <= 0 {
		return fmt.Errorf("chart.margin %g leaves no room for a %gx%g wheel", c.Chart.Margin, c.Chart.Width, c.Chart.Height)
	}
	return nil
}

// DefaultAspects returns the major aspects with their default colors.
func DefaultAspects() []Aspect {
	colors := astrochart.DefaultConfig().AspectColors
	var out []Aspect
	for _, a := range astrochart.DefaultAspects() {
		var color string
		if c, ok := colors[a.Name]; ok {
			color = c.Hex()
		}
		out = append(out, Aspect{Name: a.Name, Angle: a.Angle, Orb: a.Orb, Color: color})
	}
	return out
}

// Radius is the outer wheel radius these settings produce.
func (c Chart) Radius() float64 {
	return c.base().Radius()
}

// ChartConfig converts the settings to an astrochart.Config.
func (c Chart) ChartConfig() (astrochart.Config, error) {
	cfg := c.base()

	colors := []struct {
		name string
		in   string
		out  *astrochart.Color
	}{
		{"background", c.Colors.Background, &cfg.Background},
		{"stroke", c.Colors.Stroke, &cfg.Stroke},
		{"points", c.Colors.Points, &cfg.PointColor},
		{"signs", c.Colors.Signs, &cfg.SignColor},
	}
	for _, col := range colors {
		parsed, err := astrochart.ParseColor(col.in)
		if err != nil {
			return astrochart.Config{}, fmt.Errorf("chart.colors.%s: %w", col.name, err)
		}
		*col.out = parsed
	}

	for _, a := range c.Aspects {
		if a.Color == "" {
			continue
		}
		parsed, err := astrochart.ParseColor(a.Color)
		if err != nil {
			return astrochart.Config{}, fmt.Errorf("chart.aspects %s: %w", a.Name, err)
		}
		cfg.AspectColors[a.Name] = parsed
	}
	return cfg, nil
}

// base converts the geometry and aspects, leaving colors
// at their astrochart defaults.
func (c Chart) base() astrochart.Config {
	cfg := astrochart.DefaultConfig()
	cfg.Width = c.Width
	cfg.Height = c.Height
	cfg.Margin = c.Margin
	cfg.PointCollisionRadius = c.PointCollisionRadius
	cfg.CuspCollisionDegrees = c.CuspCollisionDegrees
	cfg.MaxLayoutPasses = c.MaxLayoutPasses
	cfg.StrokeWidth = c.StrokeWidth
	cfg.AspectColors = make(map[string]astrochart.Color)
	cfg.Aspects = make([]astrochart.AspectDefinition, 0, len(c.Aspects))
	for _, a := range c.Aspects {
		cfg.Aspects = append(cfg.Aspects, astrochart.AspectDefinition{Name: a.Name, Angle: a.Angle, Orb: a.Orb})
	}
	return cfg
}
