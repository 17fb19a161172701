package ionocraft

import (
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/ionosim/internal/dynamo"
)

// Gravity is the gravitational acceleration used by every model (m/s²).
const Gravity = 9.81

const (
	DefaultMass         = 67e-6
	DefaultArmLength    = 0.01
	DefaultIxx          = 5.5833e-10
	DefaultIyy          = 5.5833e-10
	DefaultIzz          = 1.1167e-09
	DefaultProcessNoise = 1e-4
	DefaultLowerBound   = 0.0
	DefaultUpperBound   = 500e-6
)

// Mode selects the input parameterization. It is fixed at construction.
type Mode int

const (
	// ThreeInput takes collective thrust and two torque commands.
	ThreeInput Mode = iota
	// FourInput takes one force command per thruster.
	FourInput
)

// Dim is the input vector length for the mode.
func (m Mode) Dim() int {
	if m == FourInput {
		return 4
	}
	return 3
}

func (m Mode) String() string {
	switch m {
	case ThreeInput:
		return "three_input"
	case FourInput:
		return "four_input"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "three_input", "three", "3":
		return ThreeInput, nil
	case "four_input", "four", "4":
		return FourInput, nil
	default:
		return 0, fmt.Errorf("unknown input mode: %q", s)
	}
}

// Params is the immutable physical description of an ionocraft.
type Params struct {
	Dt        float64
	Mode      Mode
	Mass      float64
	ArmLength float64
	Ixx       float64
	Iyy       float64
	Izz       float64
	// Angle is the thruster cant angle in radians.
	Angle        float64
	InputNoise   float64
	ProcessNoise float64
	LowerBound   float64
	UpperBound   float64
}

func DefaultParams(dt float64) Params {
	return Params{
		Dt:           dt,
		Mode:         ThreeInput,
		Mass:         DefaultMass,
		ArmLength:    DefaultArmLength,
		Ixx:          DefaultIxx,
		Iyy:          DefaultIyy,
		Izz:          DefaultIzz,
		ProcessNoise: DefaultProcessNoise,
		LowerBound:   DefaultLowerBound,
		UpperBound:   DefaultUpperBound,
	}
}

func (p Params) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"dt", p.Dt},
		{"mass", p.Mass},
		{"arm_length", p.ArmLength},
		{"ixx", p.Ixx},
		{"iyy", p.Iyy},
		{"izz", p.Izz},
	}
	for _, v := range positive {
		if !(v.value > 0) {
			return &dynamo.InvalidParameterError{Param: v.name, Value: v.value, Reason: "must be positive"}
		}
	}
	if !(p.InputNoise >= 0) {
		return &dynamo.InvalidParameterError{Param: "input_noise", Value: p.InputNoise, Reason: "must be non-negative"}
	}
	if !(p.ProcessNoise >= 0) {
		return &dynamo.InvalidParameterError{Param: "process_noise", Value: p.ProcessNoise, Reason: "must be non-negative"}
	}
	if p.Mode != ThreeInput && p.Mode != FourInput {
		return &dynamo.InvalidParameterError{Param: "mode", Value: float64(p.Mode), Reason: "unknown input mode"}
	}
	if p.UpperBound < p.LowerBound {
		return &dynamo.InvalidParameterError{Param: "upper_bound", Value: p.UpperBound, Reason: "below lower bound"}
	}
	return nil
}

// Equilibrium returns the trim input that balances gravity at level hover.
func (p Params) Equilibrium() dynamo.Control {
	weight := p.Mass * Gravity
	if p.Mode == FourInput {
		q := weight / 4
		return dynamo.Control{q, q, q, q}
	}
	return dynamo.Control{weight, 0, 0}
}

type options struct {
	params Params
	src    rand.Source
}

// Option customizes a Model built by New.
type Option func(*options)

func WithMode(m Mode) Option {
	return func(o *options) { o.params.Mode = m }
}

func WithMass(m float64) Option {
	return func(o *options) { o.params.Mass = m }
}

func WithArmLength(l float64) Option {
	return func(o *options) { o.params.ArmLength = l }
}

func WithInertia(ixx, iyy, izz float64) Option {
	return func(o *options) {
		o.params.Ixx, o.params.Iyy, o.params.Izz = ixx, iyy, izz
	}
}

// WithAngle sets the thruster cant angle in radians.
func WithAngle(a float64) Option {
	return func(o *options) { o.params.Angle = a }
}

func WithInputNoise(std float64) Option {
	return func(o *options) { o.params.InputNoise = std }
}

func WithProcessNoise(std float64) Option {
	return func(o *options) { o.params.ProcessNoise = std }
}

// WithoutNoise zeroes both noise std-devs.
func WithoutNoise() Option {
	return func(o *options) {
		o.params.InputNoise = 0
		o.params.ProcessNoise = 0
	}
}

// WithActuatorBounds sets the saturation range of every thruster command.
func WithActuatorBounds(lower, upper float64) Option {
	return func(o *options) {
		o.params.LowerBound, o.params.UpperBound = lower, upper
	}
}

// WithSource draws noise from src. The model takes ownership of src.
func WithSource(src rand.Source) Option {
	return func(o *options) { o.src = src }
}

// WithSeed draws noise from a PCG source seeded with seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.src = seededSource(seed) }
}
