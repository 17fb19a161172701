package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/ionosim/internal/dynamo"
)

type decayDynamics struct{}

func (d *decayDynamics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{-x[0], u[0]}
}

func (d *decayDynamics) StateDim() int   { return 2 }
func (d *decayDynamics) ControlDim() int { return 1 }

func TestEulerSingleStep(t *testing.T) {
	integ := NewEuler()
	x := dynamo.State{2.0, 1.0}

	next := integ.Step(&decayDynamics{}, x, dynamo.Control{3.0}, 0, 0.5)

	if next[0] != 1.0 {
		t.Errorf("x0 = %f, want 1.0", next[0])
	}
	if next[1] != 2.5 {
		t.Errorf("x1 = %f, want 2.5", next[1])
	}
	if x[0] != 2.0 || x[1] != 1.0 {
		t.Errorf("input state mutated: %v", x)
	}
}

func TestEulerConvergence(t *testing.T) {
	integ := NewEuler()
	dyn := &decayDynamics{}
	u := dynamo.Control{0}

	errAt := func(dt float64) float64 {
		x := dynamo.State{1.0, 0.0}
		steps := int(math.Round(1.0 / dt))
		for i := 0; i < steps; i++ {
			x = integ.Step(dyn, x, u, float64(i)*dt, dt)
		}
		return math.Abs(x[0] - math.Exp(-1.0))
	}

	coarse := errAt(0.01)
	fine := errAt(0.001)

	if fine > 1e-3 {
		t.Errorf("error too large at dt=0.001: %e", fine)
	}
	// first order: ten times smaller step, roughly ten times smaller error
	if ratio := coarse / fine; ratio < 8 || ratio > 12 {
		t.Errorf("unexpected convergence ratio %.2f", ratio)
	}
}
