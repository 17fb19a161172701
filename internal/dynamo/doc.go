// Package dynamo provides core simulation primitives for vehicle dynamics.
//
// The package defines the interfaces shared by models, integrators,
// controllers and the rollout machinery:
//
//   - [State], [Control]: plain float64 vectors
//   - [System]: continuous right-hand side (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step integrator over a [System]
//   - [VehicleDynamics]: discrete-time step(state, input) -> state oracle
//   - [Controller]: feedback controller interface
//   - [Simulator]: closed-loop rollouts of a vehicle under a controller
//
// # Example
//
//	craft, _ := ionocraft.New(0.001)
//	sim := dynamo.New(craft, control.NewHover(craft.Equilibrium()))
//	result, _ := sim.Run(ctx, x0, dynamo.Config{Steps: 500})
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel rollouts use
// [Ensemble], which builds one vehicle and controller per run.
package dynamo
