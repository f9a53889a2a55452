package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spinsim/internal/engine"
	"github.com/san-kum/spinsim/internal/session"
	"github.com/san-kum/spinsim/internal/wedge"
)

const (
	DefaultTimeStep           = 1.0 / 60.0
	DefaultMaxIterations      = 10
	DefaultStabilityThreshold = 0.01
	DefaultOuterInertia       = 2.0
	DefaultOuterFriction      = 0.3
	DefaultInnerInertia       = 0.5
	DefaultInnerFriction      = 0.1
	DefaultClutchRatio        = 0.15
	DefaultMinVelocity        = 4.0
	DefaultMaxVelocity        = 30.0
	DefaultMaxSpinTime        = 60.0
	DefaultFrameRate          = 60
)

type Config struct {
	Engine EngineConfig  `yaml:"engine"`
	Outer  WheelConfig   `yaml:"outer"`
	Inner  WheelConfig   `yaml:"inner"`
	Power  PowerConfig   `yaml:"power"`
	Wedges []WedgeConfig `yaml:"wedges"`
	Seed   int64         `yaml:"seed"`
}

type EngineConfig struct {
	TimeStep           float64 `yaml:"time_step"`
	MaxIterations      int     `yaml:"max_iterations"`
	StabilityThreshold float64 `yaml:"stability_threshold"`
}

type WheelConfig struct {
	Inertia     float64 `yaml:"inertia"`
	Friction    float64 `yaml:"friction"`
	ClutchRatio float64 `yaml:"clutch_ratio"`
}

type PowerConfig struct {
	MinVelocity float64 `yaml:"min_velocity"`
	MaxVelocity float64 `yaml:"max_velocity"`
	MaxSpinTime float64 `yaml:"max_spin_time"`
	FrameRate   int     `yaml:"frame_rate"`
}

type WedgeConfig struct {
	Label  string  `yaml:"label"`
	Weight float64 `yaml:"weight"`
	Payout int     `yaml:"payout"`
}

func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			TimeStep:           DefaultTimeStep,
			MaxIterations:      DefaultMaxIterations,
			StabilityThreshold: DefaultStabilityThreshold,
		},
		Outer: WheelConfig{
			Inertia:  DefaultOuterInertia,
			Friction: DefaultOuterFriction,
		},
		Inner: WheelConfig{
			Inertia:     DefaultInnerInertia,
			Friction:    DefaultInnerFriction,
			ClutchRatio: DefaultClutchRatio,
		},
		Power: PowerConfig{
			MinVelocity: DefaultMinVelocity,
			MaxVelocity: DefaultMaxVelocity,
			MaxSpinTime: DefaultMaxSpinTime,
			FrameRate:   DefaultFrameRate,
		},
		Wedges: []WedgeConfig{
			{Label: "x2", Weight: 30, Payout: 2},
			{Label: "x5", Weight: 15, Payout: 5},
			{Label: "lose", Weight: 30},
			{Label: "x10", Weight: 10, Payout: 10},
			{Label: "respin", Weight: 10, Payout: 1},
			{Label: "jackpot", Weight: 5, Payout: 50},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SessionOptions converts the config into session options.
func (c *Config) SessionOptions() session.Options {
	wedges := make([]wedge.Wedge, len(c.Wedges))
	for i, w := range c.Wedges {
		wedges[i] = wedge.Wedge{Label: w.Label, Weight: w.Weight, Payout: w.Payout}
	}
	return session.Options{
		Engine: engine.Config{
			TimeStep:           c.Engine.TimeStep,
			MaxIterations:      c.Engine.MaxIterations,
			StabilityThreshold: c.Engine.StabilityThreshold,
		},
		Outer: engine.WheelConfig{
			Inertia:  c.Outer.Inertia,
			Friction: c.Outer.Friction,
		},
		Inner: engine.WheelConfig{
			Inertia:     c.Inner.Inertia,
			Friction:    c.Inner.Friction,
			ClutchRatio: c.Inner.ClutchRatio,
		},
		Wedges:      wedges,
		MinVelocity: c.Power.MinVelocity,
		MaxVelocity: c.Power.MaxVelocity,
		FrameRate:   c.Power.FrameRate,
		MaxSpinTime: c.Power.MaxSpinTime,
		Seed:        c.Seed,
	}
}
