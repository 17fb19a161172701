package metrics

import (
	"math"

	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
)

// Stability is the fraction of observed states whose pitch and roll stay
// within threshold radians. Non-finite states count as violations.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < ionocraft.NumDynamic {
		return
	}
	s.samples++
	pitch, roll := x[ionocraft.Pitch], x[ionocraft.Roll]
	if !x.IsValid() || math.Abs(pitch) > s.threshold || math.Abs(roll) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
