package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
	"github.com/san-kum/ionosim/internal/logger"
)

const (
	DefaultDt         = 0.001
	DefaultSteps      = 2000
	DefaultController = "hover"
	DefaultKp         = 1.675e-3
	DefaultKi         = 0.0
	DefaultKd         = 4.7e-4
	DefaultAttKp      = 2.2e-3
	DefaultAttKd      = 1.6e-4
)

type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Rollout RolloutConfig `yaml:"rollout"`
	Logging LoggingConfig `yaml:"logging"`
}

type ModelConfig struct {
	Mode         string  `yaml:"mode"`
	Dt           float64 `yaml:"dt"`
	Mass         float64 `yaml:"mass"`
	ArmLength    float64 `yaml:"arm_length"`
	Ixx          float64 `yaml:"ixx"`
	Iyy          float64 `yaml:"iyy"`
	Izz          float64 `yaml:"izz"`
	Angle        float64 `yaml:"angle"`
	InputNoise   float64 `yaml:"input_noise"`
	ProcessNoise float64 `yaml:"process_noise"`
	LowerBound   float64 `yaml:"lower_bound"`
	UpperBound   float64 `yaml:"upper_bound"`
	// Seed 0 draws noise from an unseeded source.
	Seed int64 `yaml:"seed"`
}

type RolloutConfig struct {
	Steps            int              `yaml:"steps"`
	Runs             int              `yaml:"runs"`
	Controller       string           `yaml:"controller"`
	ControllerParams ControllerConfig `yaml:"controller_params"`
	InitState        InitStateConfig  `yaml:"init_state"`
}

type ControllerConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
	AttKp  float64 `yaml:"att_kp"`
	AttKd  float64 `yaml:"att_kd"`
	// Input is the fixed vector for the constant controller.
	Input []float64 `yaml:"input,omitempty"`
}

type InitStateConfig struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
	VX    float64 `yaml:"vx"`
	VY    float64 `yaml:"vy"`
	VZ    float64 `yaml:"vz"`
	Yaw   float64 `yaml:"yaw"`
	Pitch float64 `yaml:"pitch"`
	Roll  float64 `yaml:"roll"`
	WX    float64 `yaml:"wx"`
	WY    float64 `yaml:"wy"`
	WZ    float64 `yaml:"wz"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoggerConfig converts the logging section for logger.Init.
func (l LoggingConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  l.Level,
		Format: l.Format,
		Output: os.Stderr,
	}
}

func DefaultConfig() *Config {
	p := ionocraft.DefaultParams(DefaultDt)
	return &Config{
		Model: ModelConfig{
			Mode:         p.Mode.String(),
			Dt:           p.Dt,
			Mass:         p.Mass,
			ArmLength:    p.ArmLength,
			Ixx:          p.Ixx,
			Iyy:          p.Iyy,
			Izz:          p.Izz,
			Angle:        p.Angle,
			InputNoise:   p.InputNoise,
			ProcessNoise: p.ProcessNoise,
			LowerBound:   p.LowerBound,
			UpperBound:   p.UpperBound,
		},
		Rollout: RolloutConfig{
			Steps:      DefaultSteps,
			Runs:       1,
			Controller: DefaultController,
			ControllerParams: ControllerConfig{
				Kp:    DefaultKp,
				Ki:    DefaultKi,
				Kd:    DefaultKd,
				AttKp: DefaultAttKp,
				AttKd: DefaultAttKd,
			},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads a YAML file on top of DefaultConfig, so omitted keys keep
// their defaults.
func Load(path string) (*Config, error) {
	return Overlay(path, DefaultConfig())
}

// Overlay reads a YAML file on top of a copy of base.
func Overlay(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Rollout.ControllerParams.Input = slices.Clone(c.Rollout.ControllerParams.Input)
	return &out
}

func (c *Config) ModelParams() (ionocraft.Params, error) {
	mode, err := ionocraft.ParseMode(c.Model.Mode)
	if err != nil {
		return ionocraft.Params{}, err
	}
	return ionocraft.Params{
		Dt:           c.Model.Dt,
		Mode:         mode,
		Mass:         c.Model.Mass,
		ArmLength:    c.Model.ArmLength,
		Ixx:          c.Model.Ixx,
		Iyy:          c.Model.Iyy,
		Izz:          c.Model.Izz,
		Angle:        c.Model.Angle,
		InputNoise:   c.Model.InputNoise,
		ProcessNoise: c.Model.ProcessNoise,
		LowerBound:   c.Model.LowerBound,
		UpperBound:   c.Model.UpperBound,
	}, nil
}

// NewModel builds a model drawing noise from a source seeded with seed.
// A zero seed selects an unseeded source.
func (c *Config) NewModel(seed int64) (*ionocraft.Model, error) {
	p, err := c.ModelParams()
	if err != nil {
		return nil, err
	}
	m, err := ionocraft.NewFromParams(p, nil)
	if err != nil {
		return nil, err
	}
	if seed != 0 {
		m = m.WithSeed(seed)
	}
	return m, nil
}

// BuildModel builds the configured model using the configured seed.
func (c *Config) BuildModel() (*ionocraft.Model, error) {
	return c.NewModel(c.Model.Seed)
}

func (c *Config) InitState() dynamo.State {
	s := c.Rollout.InitState
	x := make(dynamo.State, ionocraft.NumStates)
	x[ionocraft.X], x[ionocraft.Y], x[ionocraft.Z] = s.X, s.Y, s.Z
	x[ionocraft.VX], x[ionocraft.VY], x[ionocraft.VZ] = s.VX, s.VY, s.VZ
	x[ionocraft.Yaw], x[ionocraft.Pitch], x[ionocraft.Roll] = s.Yaw, s.Pitch, s.Roll
	x[ionocraft.WX], x[ionocraft.WY], x[ionocraft.WZ] = s.WX, s.WY, s.WZ
	return x
}

func (c *Config) SimConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Steps = c.Rollout.Steps
	cfg.Seed = c.Model.Seed
	return cfg
}

func (c *Config) Validate() error {
	p, err := c.ModelParams()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if c.Rollout.Steps <= 0 {
		return fmt.Errorf("rollout.steps must be positive, got %d", c.Rollout.Steps)
	}
	if c.Rollout.Runs <= 0 {
		return fmt.Errorf("rollout.runs must be positive, got %d", c.Rollout.Runs)
	}
	if c.Rollout.Controller == "" {
		return fmt.Errorf("rollout.controller is empty")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.Logging.Format)
	}
	return nil
}
