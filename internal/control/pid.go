package control

import (
	"math"

	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
)

// AltitudePID holds Z with collective thrust around a trim value. Z grows
// downward, so a positive error (Z below target) asks for more thrust.
// Output is a three-input vector with zero torques.
type AltitudePID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	Trim     float64
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewAltitudePID(trim, kp, ki, kd, target float64) *AltitudePID {
	return &AltitudePID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Trim:   trim,
		first:  true,
	}
}

func (p *AltitudePID) Compute(x dynamo.State, t float64) dynamo.Control {
	if len(x) != ionocraft.NumStates {
		return dynamo.Control{p.Trim, 0, 0}
	}

	err := x[ionocraft.Z] - p.Target

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.thrust(p.Kp * err)
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt

		p.prevErr = err
		p.prevT = t

		return p.thrust(p.Kp*err + p.Ki*p.integral + p.Kd*derivative)
	}
	return p.thrust(p.Kp * err)
}

func (p *AltitudePID) thrust(correction float64) dynamo.Control {
	return dynamo.Control{math.Max(0, p.Trim+correction), 0, 0}
}

// Reset clears integral and derivative state
func (p *AltitudePID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *AltitudePID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *AltitudePID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	}
}
