package experiment

import (
	"fmt"
	"slices"

	"github.com/san-kum/ionosim/internal/config"
	"github.com/san-kum/ionosim/internal/control"
	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
	"github.com/san-kum/ionosim/internal/metrics"
)

// ControllerFactory builds a controller for a model from its config
// section.
type ControllerFactory func(m *ionocraft.Model, params config.ControllerConfig) (dynamo.Controller, error)

type Registry struct {
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]ControllerFactory),
	}

	r.controllers["none"] = func(m *ionocraft.Model, _ config.ControllerConfig) (dynamo.Controller, error) {
		return control.NewConstant(make(dynamo.Control, m.ControlDim())), nil
	}
	r.controllers["hover"] = func(m *ionocraft.Model, _ config.ControllerConfig) (dynamo.Controller, error) {
		return control.NewHover(m.Equilibrium()), nil
	}
	r.controllers["constant"] = func(m *ionocraft.Model, p config.ControllerConfig) (dynamo.Controller, error) {
		if len(p.Input) != m.ControlDim() {
			return nil, &dynamo.DimensionMismatchError{What: "constant input", Got: len(p.Input), Want: m.ControlDim()}
		}
		return control.NewConstant(p.Input), nil
	}
	r.controllers["pid"] = func(m *ionocraft.Model, p config.ControllerConfig) (dynamo.Controller, error) {
		if err := requireThreeInput(m, "pid"); err != nil {
			return nil, err
		}
		return control.NewAltitudePID(m.Equilibrium()[ionocraft.Thrust], p.Kp, p.Ki, p.Kd, p.Target), nil
	}
	r.controllers["attitude"] = func(m *ionocraft.Model, p config.ControllerConfig) (dynamo.Controller, error) {
		if err := requireThreeInput(m, "attitude"); err != nil {
			return nil, err
		}
		return control.NewAttitudeLQR(m.Equilibrium(), p.AttKp, p.AttKd), nil
	}

	return r
}

func requireThreeInput(m *ionocraft.Model, name string) error {
	if m.Mode() != ionocraft.ThreeInput {
		return fmt.Errorf("controller %s requires %s mode, model is %s", name, ionocraft.ThreeInput, m.Mode())
	}
	return nil
}

// Register adds or replaces a controller factory.
func (r *Registry) Register(name string, f ControllerFactory) {
	r.controllers[name] = f
}

func (r *Registry) GetController(name string, m *ionocraft.Model, params config.ControllerConfig) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(m, params)
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) DefaultMetrics(m *ionocraft.Model) []dynamo.Metric {
	return metrics.Default(m.Params())
}
