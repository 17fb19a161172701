package control

import "github.com/san-kum/ionosim/internal/dynamo"

// Hover returns the trim input on every call.
type Hover struct {
	trim dynamo.Control
}

func NewHover(trim dynamo.Control) *Hover {
	return &Hover{trim: trim.Clone()}
}

func (h *Hover) Compute(x dynamo.State, t float64) dynamo.Control {
	return h.trim.Clone()
}

// Constant passes a manually set input vector to the vehicle.
type Constant struct {
	u dynamo.Control
}

func NewConstant(u dynamo.Control) *Constant {
	return &Constant{u: u.Clone()}
}

// SetControl replaces the held input. Vectors of a different length are
// ignored.
func (c *Constant) SetControl(u dynamo.Control) {
	if len(u) != len(c.u) {
		return
	}
	copy(c.u, u)
}

func (c *Constant) Compute(x dynamo.State, t float64) dynamo.Control {
	return c.u.Clone()
}
