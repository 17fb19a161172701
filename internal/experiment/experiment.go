package experiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/ionosim/internal/config"
	"github.com/san-kum/ionosim/internal/control"
	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
	"github.com/san-kum/ionosim/internal/storage"
)

// Experiment wires a config into a model, a controller and the default
// metrics.
type Experiment struct {
	name       string
	cfg        *config.Config
	registry   *Registry
	model      *ionocraft.Model
	controller dynamo.Controller
	simulator  *dynamo.Simulator
}

func New(name string, cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{name: name, cfg: cfg, registry: registry}
}

func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	model, err := e.cfg.BuildModel()
	if err != nil {
		return err
	}
	ctrl, err := e.registry.GetController(e.cfg.Rollout.Controller, model, e.cfg.Rollout.ControllerParams)
	if err != nil {
		return err
	}

	e.model = model
	e.controller = ctrl
	e.simulator = dynamo.New(model, ctrl)
	for _, m := range e.registry.DefaultMetrics(model) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.InitState(), e.cfg.SimConfig())
}

// RunEnsemble runs cfg.Rollout.Runs independent rollouts, each with its own
// model copy and controller, seeded from the configured seed upward.
func (e *Experiment) RunEnsemble(ctx context.Context) ([]*dynamo.Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	var (
		mu       sync.Mutex
		buildErr error
	)
	factory := dynamo.RunFactory{
		Vehicle: func(seed int64) dynamo.VehicleDynamics {
			return e.model.WithSeed(seed)
		},
		Controller: func(v dynamo.VehicleDynamics) dynamo.Controller {
			ctrl, err := e.registry.GetController(e.cfg.Rollout.Controller, v.(*ionocraft.Model), e.cfg.Rollout.ControllerParams)
			if err != nil {
				mu.Lock()
				buildErr = err
				mu.Unlock()
				return control.NewHover(v.(*ionocraft.Model).Equilibrium())
			}
			return ctrl
		},
		Metrics: func(v dynamo.VehicleDynamics) []dynamo.Metric {
			return e.registry.DefaultMetrics(v.(*ionocraft.Model))
		},
	}

	results, err := dynamo.NewEnsemble(factory, e.cfg.Rollout.Runs, e.cfg.Model.Seed).Run(ctx, e.cfg.InitState(), e.cfg.SimConfig())
	if buildErr != nil {
		return nil, buildErr
	}
	return results, err
}

func (e *Experiment) Model() *ionocraft.Model { return e.model }

func (e *Experiment) Controller() dynamo.Controller { return e.controller }

// Simulator returns the underlying simulator for adding observers
func (e *Experiment) Simulator() *dynamo.Simulator {
	return e.simulator
}

// RunSpec describes this experiment for storage and export.
func (e *Experiment) RunSpec() storage.RunSpec {
	spec := storage.RunSpec{
		Preset:     e.name,
		Mode:       e.cfg.Model.Mode,
		Controller: e.cfg.Rollout.Controller,
		Dt:         e.cfg.Model.Dt,
		Steps:      e.cfg.Rollout.Steps,
		Seed:       e.cfg.Model.Seed,
		StateNames: ionocraft.StateNames(),
	}
	if e.model != nil {
		spec.InputNames = e.model.InputNames()
	}
	return spec
}
