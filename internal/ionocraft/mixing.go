package ionocraft

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ionosim/internal/dynamo"
)

// Hover mixing vectors: the sign of each thruster's contribution to lift,
// pitch and roll.
var (
	hoverCollective = [NumActuators]float64{1, 1, 1, 1}
	hoverPitch      = [NumActuators]float64{-1, -1, 1, 1}
	hoverRoll       = [NumActuators]float64{-1, 1, 1, -1}
)

// Wrench is the body-frame force and torque produced by the thrusters.
type Wrench struct {
	Force  mgl64.Vec3 // Tx, Ty, Tz
	Torque mgl64.Vec3 // Taux, Tauy, Tauz
}

// mixingMatrix maps the four thruster forces to
// [Tx, Ty, Tz, Tauz, Tauy, Taux] for a cant angle and arm length.
func mixingMatrix(angle, arm float64) *mat.Dense {
	s, c := math.Sincos(angle)
	ls, lc := arm*s, arm*c
	return mat.NewDense(6, NumActuators, []float64{
		0, s, 0, -s,
		-s, 0, s, 0,
		c, c, c, c,
		-ls, ls, -ls, ls,
		-lc, -lc, lc, lc,
		lc, -lc, -lc, lc,
	})
}

func (b *rigidBody) wrench(act dynamo.Control) Wrench {
	var out mat.VecDense
	out.MulVec(b.mixing, mat.NewVecDense(NumActuators, []float64(act)))
	return Wrench{
		Force:  mgl64.Vec3{out.AtVec(0), out.AtVec(1), out.AtVec(2)},
		Torque: mgl64.Vec3{out.AtVec(5), out.AtVec(4), out.AtVec(3)},
	}
}

// mixThreeInput expands (collective, pitch torque, roll torque) into four
// thruster commands.
func mixThreeInput(u dynamo.Control, arm float64) dynamo.Control {
	collective := u[0] / 4
	pitch := u[1] * arm / 4
	roll := u[2] * arm / 4
	act := make(dynamo.Control, NumActuators)
	for i := range act {
		act[i] = collective*hoverCollective[i] + pitch*hoverPitch[i] + roll*hoverRoll[i]
	}
	return act
}

// saturate clamps every command into [lower, upper] in place.
func saturate(act dynamo.Control, lower, upper float64) {
	for i, v := range act {
		act[i] = math.Min(math.Max(v, lower), upper)
	}
}
