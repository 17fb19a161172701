package dynamo

import (
	"context"
	"sync"
)

// RunFactory builds the per-run pieces of an ensemble member. Vehicles and
// controllers carry mutable state (random source, integrator memory) and
// are never shared between goroutines.
type RunFactory struct {
	Vehicle    func(seed int64) VehicleDynamics
	Controller func(vehicle VehicleDynamics) Controller
	Metrics    func(vehicle VehicleDynamics) []Metric
}

type Ensemble struct {
	factory   RunFactory
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory RunFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, x0 State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			vehicle := e.factory.Vehicle(cfgCopy.Seed)
			s := New(vehicle, e.factory.Controller(vehicle))
			if e.factory.Metrics != nil {
				for _, m := range e.factory.Metrics(vehicle) {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, x0, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
