package dynamo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/ionosim/internal/logger"
)

type Simulator struct {
	vehicle    VehicleDynamics
	controller Controller
	metrics    []Metric
	observers  []Observer
	log        *slog.Logger
}

func New(vehicle VehicleDynamics, controller Controller) *Simulator {
	return &Simulator{
		vehicle:    vehicle,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        logger.L(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetLogger replaces the logger used for run diagnostics.
func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	dt := s.vehicle.Timestep()
	result := &Result{
		States:   make([]State, 0, cfg.Steps+1),
		Controls: make([]Control, 0, cfg.Steps),
		Times:    make([]float64, 0, cfg.Steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	s.log.Debug("rollout started", "steps", cfg.Steps, "dt", dt, "seed", cfg.Seed)

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		newX, err := s.vehicle.Step(x, u)
		if err != nil {
			return result, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.log.Warn("rollout aborted", "step", i, "t", t, "err", err)
			break
		}

		x = newX
		t = float64(i+1) * dt
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u.Clone())
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Debug("rollout finished", "steps_taken", result.StepsTaken, "errors", len(result.Errors))

	return result, nil
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if len(x0) != s.vehicle.StateDim() {
		return &DimensionMismatchError{What: "initial state", Got: len(x0), Want: s.vehicle.StateDim()}
	}
	return nil
}

// RunWithCallback steps until the callback returns false, the context is
// canceled or cfg.Steps is reached.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, Control, float64) bool) error {
	if err := s.validate(x0, cfg); err != nil {
		return err
	}

	dt := s.vehicle.Timestep()
	x := x0.Clone()

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * dt
		u := s.controller.Compute(x, t)

		if !callback(x, u, t) {
			return nil
		}

		next, err := s.vehicle.Step(x, u)
		if err != nil {
			return &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}
		if cfg.ValidateState && !next.IsValid() {
			return &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}
		x = next
	}

	return nil
}
