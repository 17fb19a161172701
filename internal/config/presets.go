package config

import (
	"slices"
)

func preset(apply func(c *Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

var Presets = map[string]*Config{
	// noise-free open-loop hover at the trim input
	"hover": preset(func(c *Config) {
		c.Model.ProcessNoise = 0
		c.Rollout.Controller = "hover"
	}),
	// canted thrusters lose vertical thrust, so altitude is held by PID
	"canted": preset(func(c *Config) {
		c.Model.Angle = 0.1
		c.Model.ProcessNoise = 0
		c.Rollout.Controller = "pid"
		c.Rollout.Steps = 3000
	}),
	"noisy": preset(func(c *Config) {
		c.Model.ProcessNoise = 1e-4
		c.Model.InputNoise = 1e-6
		c.Model.Seed = 1
		c.Rollout.Controller = "attitude"
		c.Rollout.Runs = 8
	}),
	"four_input": preset(func(c *Config) {
		c.Model.Mode = "four_input"
		c.Model.ProcessNoise = 0
		c.Rollout.Controller = "hover"
	}),
	// Z grows downward, so a negative target climbs
	"climb": preset(func(c *Config) {
		c.Model.ProcessNoise = 0
		c.Rollout.Controller = "pid"
		c.Rollout.ControllerParams.Target = -0.5
		c.Rollout.Steps = 5000
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
