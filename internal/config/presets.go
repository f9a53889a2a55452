package config

import "sort"

// Presets are named wheel setups with distinct spin-down feels.
var Presets = map[string]*Config{
	"classic": DefaultConfig(),
	"casino": {
		Engine: EngineConfig{TimeStep: DefaultTimeStep, MaxIterations: DefaultMaxIterations, StabilityThreshold: DefaultStabilityThreshold},
		Outer:  WheelConfig{Inertia: 3.0, Friction: 0.25},
		Inner:  WheelConfig{Inertia: 0.4, Friction: 0.12, ClutchRatio: 0.2},
		Power:  PowerConfig{MinVelocity: 6.0, MaxVelocity: 40.0, MaxSpinTime: DefaultMaxSpinTime, FrameRate: DefaultFrameRate},
		Wedges: []WedgeConfig{
			{Label: "red", Weight: 46.6, Payout: 2},
			{Label: "black", Weight: 46.6, Payout: 2},
			{Label: "green", Weight: 6.8, Payout: 14},
		},
	},
	// Nearly frictionless wheel that coasts for a long time.
	"icy": {
		Engine: EngineConfig{TimeStep: DefaultTimeStep, MaxIterations: DefaultMaxIterations, StabilityThreshold: 0.05},
		Outer:  WheelConfig{Inertia: 2.0, Friction: 0.06},
		Inner:  WheelConfig{Inertia: 0.5, Friction: 0.04, ClutchRatio: 0.1},
		Power:  PowerConfig{MinVelocity: 2.0, MaxVelocity: 20.0, MaxSpinTime: 180.0, FrameRate: DefaultFrameRate},
		Wedges: DefaultConfig().Wedges,
	},
	// Heavy outer wheel with a stiff clutch: the inner wheel tracks
	// the outer almost rigidly.
	"locked": {
		Engine: EngineConfig{TimeStep: DefaultTimeStep, MaxIterations: DefaultMaxIterations, StabilityThreshold: DefaultStabilityThreshold},
		Outer:  WheelConfig{Inertia: 5.0, Friction: 0.35},
		Inner:  WheelConfig{Inertia: 0.5, Friction: 0.05, ClutchRatio: 1.0},
		Power:  PowerConfig{MinVelocity: 4.0, MaxVelocity: 25.0, MaxSpinTime: DefaultMaxSpinTime, FrameRate: DefaultFrameRate},
		Wedges: DefaultConfig().Wedges,
	},
	// Clutch disabled: the inner wheel never moves.
	"loose": {
		Engine: EngineConfig{TimeStep: DefaultTimeStep, MaxIterations: DefaultMaxIterations, StabilityThreshold: DefaultStabilityThreshold},
		Outer:  WheelConfig{Inertia: 2.0, Friction: 0.3},
		Inner:  WheelConfig{Inertia: 0.5, Friction: 0.1, ClutchRatio: 0},
		Power:  PowerConfig{MinVelocity: DefaultMinVelocity, MaxVelocity: DefaultMaxVelocity, MaxSpinTime: DefaultMaxSpinTime, FrameRate: DefaultFrameRate},
		Wedges: DefaultConfig().Wedges,
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
