package ionocraft

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/integrators"
)

// snapThreshold is the magnitude below which output components are
// replaced by exactly zero.
const snapThreshold = 1e-15

// rigidBody is the continuous Newton-Euler right-hand side. Its control
// vector is the four saturated thruster forces.
type rigidBody struct {
	mass       float64
	inertia    mgl64.Mat3
	invInertia mgl64.Mat3
	mixing     *mat.Dense
}

func (b *rigidBody) StateDim() int   { return NumStates }
func (b *rigidBody) ControlDim() int { return NumActuators }

// Derive returns d/dt of the state. The acceleration block has zero
// derivative; Step overwrites it after integration.
func (b *rigidBody) Derive(x dynamo.State, act dynamo.Control, t float64) dynamo.State {
	v := mgl64.Vec3{x[VX], x[VY], x[VZ]}
	w := mgl64.Vec3{x[WX], x[WY], x[WZ]}
	wr := b.wrench(act)

	rot := bodyToWorld(x[Yaw], x[Pitch], x[Roll])
	gravity := rot.Transpose().Mul3x1(mgl64.Vec3{0, 0, b.mass * Gravity})
	fExt := gravity.Sub(wr.Force)
	wx := skew(w)

	pos := rot.Mul3x1(v)
	ypr := eulerRates(x[Pitch], x[Roll]).Mul3x1(w)
	acc := fExt.Mul(1 / b.mass).Sub(wx.Mul3x1(v))
	alpha := b.invInertia.Mul3x1(wr.Torque).Sub(b.invInertia.Mul3(wx).Mul3(b.inertia).Mul3x1(w))

	dx := make(dynamo.State, len(x))
	copy(dx[X:], pos[:])
	copy(dx[VX:], acc[:])
	copy(dx[Yaw:], ypr[:])
	copy(dx[WX:], alpha[:])
	return dx
}

// Model is a discrete-time ionocraft. Parameters never change after New;
// the only mutable member is the noise source.
type Model struct {
	params     Params
	body       *rigidBody
	integrator dynamo.Integrator
	noise      *noise
	uEq        dynamo.Control
}

var _ dynamo.VehicleDynamics = (*Model)(nil)

// New builds a model with the given timestep and the default ionocraft
// parameters, modified by opts.
func New(dt float64, opts ...Option) (*Model, error) {
	o := options{params: DefaultParams(dt)}
	for _, opt := range opts {
		opt(&o)
	}
	return NewFromParams(o.params, o.src)
}

// NewFromParams builds a model from p. A nil src uses a randomly seeded
// source.
func NewFromParams(p Params, src rand.Source) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	inertia := mgl64.Diag3(mgl64.Vec3{p.Ixx, p.Iyy, p.Izz})
	return &Model{
		params: p,
		body: &rigidBody{
			mass:       p.Mass,
			inertia:    inertia,
			invInertia: mgl64.Diag3(mgl64.Vec3{1 / p.Ixx, 1 / p.Iyy, 1 / p.Izz}),
			mixing:     mixingMatrix(p.Angle, p.ArmLength),
		},
		integrator: integrators.NewEuler(),
		noise:      newNoise(src),
		uEq:        p.Equilibrium(),
	}, nil
}

// WithSource returns a copy of m that draws noise from src.
func (m *Model) WithSource(src rand.Source) *Model {
	c := *m
	c.noise = newNoise(src)
	return &c
}

// WithSeed returns a copy of m with its own seeded noise source.
func (m *Model) WithSeed(seed int64) *Model {
	return m.WithSource(seededSource(seed))
}

func (m *Model) Params() Params              { return m.params }
func (m *Model) Mode() Mode                  { return m.params.Mode }
func (m *Model) StateDim() int               { return NumStates }
func (m *Model) ControlDim() int             { return m.params.Mode.Dim() }
func (m *Model) Timestep() float64           { return m.params.Dt }
func (m *Model) InputLayout() []Field        { return InputLayout(m.params.Mode) }
func (m *Model) InputNames() []string        { return fieldNames(inputLayouts[m.params.Mode]) }
func (m *Model) Equilibrium() dynamo.Control { return m.uEq.Clone() }

// InputField describes input i for the model's mode.
func (m *Model) InputField(i InputIndex) (Field, bool) { return i.Field(m.params.Mode) }

// LookupInput resolves an input component by name for the model's mode.
func (m *Model) LookupInput(name string) (InputIndex, bool) {
	for _, f := range inputLayouts[m.params.Mode] {
		if f.Name == name {
			return InputIndex(f.Index), true
		}
	}
	return 0, false
}

// Step advances x by one timestep under input u. Input noise, mixing and
// saturation are applied to u; process noise to the integrated states.
func (m *Model) Step(x dynamo.State, u dynamo.Control) (dynamo.State, error) {
	if err := m.checkDims(x, u); err != nil {
		return nil, err
	}

	act := m.condition(u)
	next := m.integrator.Step(m.body, x, act, 0, m.params.Dt)
	m.noise.perturb(next[:NumDynamic], m.params.ProcessNoise)

	thrust := bodyToWorld(x[Yaw], x[Pitch], x[Roll]).Mul3x1(m.body.wrench(act).Force)
	accel := thrust.Mul(1 / m.params.Mass).Add(mgl64.Vec3{0, 0, -Gravity})
	copy(next[AX:], accel[:])

	snap(next)
	return next, nil
}

// Actuators returns the thruster commands Step would use for u, including
// a fresh input-noise draw.
func (m *Model) Actuators(u dynamo.Control) (dynamo.Control, error) {
	if len(u) != m.ControlDim() {
		return nil, &dynamo.DimensionMismatchError{What: "input", Got: len(u), Want: m.ControlDim()}
	}
	return m.condition(u), nil
}

// Wrench maps four thruster commands to the body-frame wrench. The
// commands are used as given, without saturation.
func (m *Model) Wrench(act dynamo.Control) (Wrench, error) {
	if len(act) != NumActuators {
		return Wrench{}, &dynamo.DimensionMismatchError{What: "actuator vector", Got: len(act), Want: NumActuators}
	}
	return m.body.wrench(act), nil
}

// Derivative evaluates the continuous dynamics at x for thruster commands
// act. The acceleration block of the result is zero.
func (m *Model) Derivative(x dynamo.State, act dynamo.Control) (dynamo.State, error) {
	if len(x) != NumStates {
		return nil, &dynamo.DimensionMismatchError{What: "state", Got: len(x), Want: NumStates}
	}
	if len(act) != NumActuators {
		return nil, &dynamo.DimensionMismatchError{What: "actuator vector", Got: len(act), Want: NumActuators}
	}
	return m.body.Derive(x, act, 0), nil
}

func (m *Model) checkDims(x dynamo.State, u dynamo.Control) error {
	if len(x) != NumStates {
		return &dynamo.DimensionMismatchError{What: "state", Got: len(x), Want: NumStates}
	}
	if len(u) != m.ControlDim() {
		return &dynamo.DimensionMismatchError{What: "input", Got: len(u), Want: m.ControlDim()}
	}
	return nil
}

func (m *Model) condition(u dynamo.Control) dynamo.Control {
	noisy := u.Clone()
	m.noise.perturb(noisy, m.params.InputNoise)

	act := noisy
	if m.params.Mode == ThreeInput {
		act = mixThreeInput(noisy, m.params.ArmLength)
	}
	saturate(act, m.params.LowerBound, m.params.UpperBound)
	return act
}

func snap(x dynamo.State) {
	for i, v := range x {
		if math.Abs(v) < snapThreshold {
			x[i] = 0
		}
	}
}
