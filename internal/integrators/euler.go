// Package integrators holds fixed-step integrators over a dynamo.System.
package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/ionosim/internal/dynamo"
)

// Euler is the explicit forward-Euler step x1 = x0 + dt*f(x0, u, t).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	dx := sys.Derive(x, u, t)
	result := make(dynamo.State, len(x))
	floats.AddScaledTo(result, x, dt, dx)
	return result
}
