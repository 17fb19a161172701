package metrics

import (
	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
)

// KineticEnergy averages translational plus rotational kinetic energy
// over the observed states.
type KineticEnergy struct {
	name          string
	mass          float64
	ixx, iyy, izz float64
	samples       int
	totalEnergy   float64
}

func NewKineticEnergy(p ionocraft.Params) *KineticEnergy {
	return &KineticEnergy{
		name: "kinetic_energy",
		mass: p.Mass,
		ixx:  p.Ixx,
		iyy:  p.Iyy,
		izz:  p.Izz,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < ionocraft.NumDynamic {
		return
	}
	vx, vy, vz := x[ionocraft.VX], x[ionocraft.VY], x[ionocraft.VZ]
	wx, wy, wz := x[ionocraft.WX], x[ionocraft.WY], x[ionocraft.WZ]
	ke := 0.5 * e.mass * (vx*vx + vy*vy + vz*vz)
	keRot := 0.5 * (e.ixx*wx*wx + e.iyy*wy*wy + e.izz*wz*wz)
	e.totalEnergy += ke + keRot
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}
