// Package ionocraft implements the rigid-body dynamics of a small
// four-thruster ionocraft as a discrete-time [dynamo.VehicleDynamics].
//
// A [Model] holds immutable physical parameters. Each call to
// [Model.Step] conditions the input (noise, mixing, saturation), maps the
// four actuator forces to a body-frame wrench, evaluates the Newton-Euler
// derivatives and takes one forward-Euler step:
//
//	craft, err := ionocraft.New(0.001, ionocraft.WithSeed(1))
//	next, err := craft.Step(x, craft.Equilibrium())
//
// # State layout
//
// States are 15-vectors ordered X, Y, Z, VX, VY, VZ, Yaw, Pitch, Roll,
// WX, WY, WZ, AX, AY, AZ. Velocities and angular rates are expressed in
// the body frame. The acceleration block is a measurement written on every
// step and is never integrated. Use [StateLayout] and [Model.InputLayout]
// to address components by name.
//
// # Gimbal lock
//
// The Euler-rate transform divides by cos(pitch). At pitch = ±π/2 the
// transform is singular and yaw/roll rates become arbitrarily large, Inf
// or NaN. The model does not clamp or reject such states; callers that can
// reach them should watch [dynamo.State.IsValid].
//
// # Randomness
//
// Input and process noise are drawn from the model's own source. Models
// are safe for concurrent use, but concurrent callers serialize on that
// source and the draw order becomes scheduling dependent; give each worker
// its own copy via [Model.WithSeed] for reproducible parallel rollouts.
package ionocraft
