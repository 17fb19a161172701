package dynamo

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"testing"
)

// decay is x' = -x discretized with forward Euler plus optional
// seeded jitter.
type decay struct {
	dt     float64
	jitter float64
	rng    *rand.Rand
}

func (d *decay) Step(x State, u Control) (State, error) {
	if len(x) != 1 {
		return nil, &DimensionMismatchError{What: "state", Got: len(x), Want: 1}
	}
	next := State{x[0] - d.dt*x[0]}
	if len(u) > 0 {
		next[0] += d.dt * u[0]
	}
	if d.rng != nil {
		next[0] += d.jitter * d.rng.NormFloat64()
	}
	return next, nil
}

func (d *decay) StateDim() int     { return 1 }
func (d *decay) ControlDim() int   { return 1 }
func (d *decay) Timestep() float64 { return d.dt }

type zeroController struct{}

func (zeroController) Compute(x State, t float64) Control { return Control{0} }

// blowup returns NaN after a fixed number of steps.
type blowup struct {
	after int
	calls int
}

func (b *blowup) Step(x State, u Control) (State, error) {
	b.calls++
	if b.calls > b.after {
		return State{math.NaN()}, nil
	}
	return x.Clone(), nil
}

func (b *blowup) StateDim() int     { return 1 }
func (b *blowup) ControlDim() int   { return 1 }
func (b *blowup) Timestep() float64 { return 0.1 }

type failing struct{ blowup }

func (f *failing) Step(x State, u Control) (State, error) {
	return nil, errors.New("actuator fault")
}

func TestSimulatorRun(t *testing.T) {
	sim := New(&decay{dt: 0.1}, zeroController{})

	cfg := Config{Steps: 10}
	x0 := State{1.0}
	result, err := sim.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if len(result.Controls) != 10 {
		t.Errorf("expected 10 controls, got %d", len(result.Controls))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps taken, got %d", result.StepsTaken)
	}
	if math.Abs(result.Times[10]-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %f", result.Times[10])
	}

	finalState := result.Final()[0]
	expected := math.Pow(0.9, 10)
	if math.Abs(finalState-expected) > 1e-12 {
		t.Errorf("expected final state %.6f, got %.6f", expected, finalState)
	}
	if x0[0] != 1.0 {
		t.Error("Run mutated the initial state")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&decay{dt: 0.1}, zeroController{})

	tests := []struct {
		name string
		x0   State
		cfg  Config
	}{
		{"zero steps", State{1}, Config{Steps: 0}},
		{"negative steps", State{1}, Config{Steps: -5}},
		{"short state", State{}, Config{Steps: 5}},
		{"long state", State{1, 2}, Config{Steps: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.x0, tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	_, err := sim.Run(context.Background(), State{1, 2}, Config{Steps: 1})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(x State, u Control, time float64) {
	t.count++
	t.sum += x[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type countingObserver struct{ n int }

func (c *countingObserver) OnStep(x State, u Control, t float64) { c.n++ }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	sim := New(&decay{dt: 0.1}, zeroController{})

	metric := &testMetric{}
	obs := &countingObserver{}
	sim.AddMetric(metric)
	sim.AddObserver(obs)

	result, err := sim.Run(context.Background(), State{1.0}, Config{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("expected metric 'test' in results")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 metric observations, got %d", metric.count)
	}
	if obs.n != 10 {
		t.Errorf("expected 10 observer calls, got %d", obs.n)
	}

	// a second run starts from fresh metric state
	if _, err := sim.Run(context.Background(), State{1.0}, Config{Steps: 3}); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if metric.count != 3 {
		t.Errorf("metric not reset between runs: %d observations", metric.count)
	}
}

func TestSimulatorInvalidStateStops(t *testing.T) {
	sim := New(&blowup{after: 3}, zeroController{})

	result, err := sim.Run(context.Background(), State{1}, Config{Steps: 10, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 3 {
		t.Errorf("expected 3 steps before abort, got %d", result.StepsTaken)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one recorded error, got %d", len(result.Errors))
	}
	var simErr *SimulationError
	if !errors.As(result.Errors[0], &simErr) {
		t.Fatalf("expected *SimulationError, got %T", result.Errors[0])
	}
	if !errors.Is(simErr, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", simErr)
	}
	if simErr.Step != 3 || !simErr.State.IsValid() {
		t.Errorf("abort recorded at step %d with state %v", simErr.Step, simErr.State)
	}
	if !result.Final().IsValid() {
		t.Error("invalid state should not be recorded")
	}
}

func TestSimulatorStepError(t *testing.T) {
	sim := New(&failing{}, zeroController{})

	_, err := sim.Run(context.Background(), State{1}, Config{Steps: 5})
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Step != 0 {
		t.Errorf("expected failure at step 0, got %d", simErr.Step)
	}
}

func TestSimulatorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(&decay{dt: 0.1}, zeroController{})
	_, err := sim.Run(ctx, State{1}, Config{Steps: 100})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := New(&decay{dt: 0.1}, zeroController{})

	var calls int
	err := sim.RunWithCallback(context.Background(), State{1}, Config{Steps: 100}, func(x State, u Control, t float64) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 callback calls, got %d", calls)
	}

	err = sim.RunWithCallback(context.Background(), State{1}, Config{Steps: 0}, func(State, Control, float64) bool { return true })
	if err == nil {
		t.Error("expected error for zero steps")
	}
}

func TestRunWithCallbackInvalidState(t *testing.T) {
	sim := New(&blowup{after: 2}, zeroController{})

	err := sim.RunWithCallback(context.Background(), State{1}, Config{Steps: 10, ValidateState: true}, func(State, Control, float64) bool { return true })
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if simErr.Step != 2 {
		t.Errorf("expected abort at step 2, got %d", simErr.Step)
	}
}

func noisyFactory(built *atomic.Int32) RunFactory {
	return RunFactory{
		Vehicle: func(seed int64) VehicleDynamics {
			built.Add(1)
			src := rand.NewPCG(uint64(seed), 0)
			return &decay{dt: 0.1, jitter: 0.01, rng: rand.New(src)}
		},
		Controller: func(VehicleDynamics) Controller { return zeroController{} },
		Metrics:    func(VehicleDynamics) []Metric { return []Metric{&testMetric{}} },
	}
}

func TestEnsembleDeterministic(t *testing.T) {
	var built atomic.Int32
	cfg := Config{Steps: 20}

	first, err := NewEnsemble(noisyFactory(&built), 4, 100).Run(context.Background(), State{1}, cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	second, err := NewEnsemble(noisyFactory(&built), 4, 100).Run(context.Background(), State{1}, cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	if built.Load() != 8 {
		t.Errorf("expected one vehicle per run, built %d", built.Load())
	}
	if len(first) != 4 {
		t.Fatalf("expected 4 results, got %d", len(first))
	}

	for i := range first {
		if first[i].Final()[0] != second[i].Final()[0] {
			t.Errorf("run %d not reproducible: %v vs %v", i, first[i].Final(), second[i].Final())
		}
		if _, ok := first[i].Metrics["test"]; !ok {
			t.Errorf("run %d missing metric", i)
		}
	}
	if first[0].Final()[0] == first[1].Final()[0] {
		t.Error("runs with different seeds should diverge")
	}
}

func TestEnsemblePropagatesErrors(t *testing.T) {
	factory := RunFactory{
		Vehicle:    func(int64) VehicleDynamics { return &failing{} },
		Controller: func(VehicleDynamics) Controller { return zeroController{} },
	}
	_, err := NewEnsemble(factory, 3, 0).Run(context.Background(), State{1}, Config{Steps: 5})
	if err == nil {
		t.Error("expected ensemble error")
	}
}
