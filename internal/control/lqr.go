package control

import (
	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
)

// LQR applies u = Trim - K (x - Target).
type LQR struct {
	K      [][]float64
	Target dynamo.State
	Trim   dynamo.Control
}

func NewLQR(k [][]float64, target dynamo.State, trim dynamo.Control) *LQR {
	return &LQR{K: k, Target: target, Trim: trim.Clone()}
}

func (l *LQR) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, len(l.K))
	for i := range u {
		if i < len(l.Trim) {
			u[i] = l.Trim[i]
		}
		for j := range x {
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			if j < len(l.K[i]) {
				u[i] -= l.K[i][j] * (x[j] - target)
			}
		}
	}
	return u
}

// NewAttitudeLQR levels a three-input ionocraft. The taux channel drives
// pitch positively and the tauy channel drives roll negatively, hence the
// opposite signs on the two rows.
func NewAttitudeLQR(trim dynamo.Control, kp, kd float64) *LQR {
	k := make([][]float64, 3)
	for i := range k {
		k[i] = make([]float64, ionocraft.NumStates)
	}
	k[ionocraft.TauX][ionocraft.Pitch] = kp
	k[ionocraft.TauX][ionocraft.WY] = kd
	k[ionocraft.TauY][ionocraft.Roll] = -kp
	k[ionocraft.TauY][ionocraft.WX] = -kd
	return NewLQR(k, make(dynamo.State, ionocraft.NumStates), trim)
}
