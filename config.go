package fundamentals

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/geometry"
	"github.com/gekko3d/fundamentals/lessonrt/rt/lessons"
)

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type AnnulusConfig struct {
	OuterRadius  float32 `yaml:"outer_radius"`
	InnerRadius  float32 `yaml:"inner_radius"`
	Subdivisions int     `yaml:"subdivisions"`
}

// Config is the session configuration file.
type Config struct {
	Lesson          string        `yaml:"lesson"`
	Window          WindowConfig  `yaml:"window"`
	Objects         int           `yaml:"objects"`
	Seed            uint64        `yaml:"seed"`
	SampleCount     uint32        `yaml:"sample_count"`
	Debug           bool          `yaml:"debug"`
	ValidateShaders bool          `yaml:"validate_shaders"`
	SettingsFile    string        `yaml:"settings_file"`
	Annulus         AnnulusConfig `yaml:"annulus"`
	ClearColor      [4]float64    `yaml:"clear_color"`
}

func DefaultConfig() Config {
	return Config{
		Lesson: "triangle",
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "WebGPU Fundamentals",
		},
		Objects:     100,
		Seed:        1,
		SampleCount: 1,
		Annulus: AnnulusConfig{
			OuterRadius:  0.5,
			InnerRadius:  0.25,
			Subdivisions: 24,
		},
		ClearColor: [4]float64{0.3, 0.3, 0.3, 1},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	known := false
	for _, n := range lessons.Names() {
		if n == c.Lesson {
			known = true
			break
		}
	}
	if !known {
		return core.Configf("unknown lesson %q", c.Lesson)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return core.Configf("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Objects < 1 {
		return core.Configf("objects must be positive, got %d", c.Objects)
	}
	if c.SampleCount != 1 && c.SampleCount != 4 {
		return core.Configf("sample_count must be 1 or 4, got %d", c.SampleCount)
	}
	a := c.Annulus
	if a.Subdivisions < 1 || a.OuterRadius <= 0 || a.InnerRadius < 0 || a.InnerRadius > a.OuterRadius {
		return core.Configf("annulus %g/%g with %d subdivisions", a.OuterRadius, a.InnerRadius, a.Subdivisions)
	}
	return nil
}

// LessonConfig is the part of c the lessons read.
func (c Config) LessonConfig() lessons.Config {
	return lessons.Config{
		Objects: c.Objects,
		Annulus: geometry.AnnulusParams{
			OuterRadius:  c.Annulus.OuterRadius,
			InnerRadius:  c.Annulus.InnerRadius,
			Subdivisions: c.Annulus.Subdivisions,
			EndAngle:     2 * math.Pi,
		},
		SampleCount:     c.SampleCount,
		ValidateShaders: c.ValidateShaders,
		Clear: core.Color{
			R: c.ClearColor[0],
			G: c.ClearColor[1],
			B: c.ClearColor[2],
			A: c.ClearColor[3],
		},
	}
}
