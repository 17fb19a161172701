package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
)

// PositionDrift is the largest distance reached from the first observed
// position.
type PositionDrift struct {
	name     string
	origin   []float64
	maxDrift float64
}

func NewPositionDrift() *PositionDrift {
	return &PositionDrift{name: "position_drift"}
}

func (d *PositionDrift) Name() string { return d.name }

func (d *PositionDrift) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < ionocraft.NumDynamic {
		return
	}
	pos := x[ionocraft.X : ionocraft.Z+1]
	if d.origin == nil {
		d.origin = append([]float64(nil), pos...)
		return
	}
	d.maxDrift = math.Max(d.maxDrift, floats.Distance(pos, d.origin, 2))
}

func (d *PositionDrift) Value() float64 {
	return d.maxDrift
}

func (d *PositionDrift) Reset() {
	d.origin = nil
	d.maxDrift = 0
}

// Default returns the metric set recorded for every rollout.
func Default(p ionocraft.Params) []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergy(p),
		NewPositionDrift(),
		NewStability(0.5),
		NewControlEffort(),
	}
}
