// Package control provides feedback controllers for the ionocraft.
//
// Controllers implement [dynamo.Controller] and produce inputs in the
// model's own parameterization:
//
//   - [Hover]: the trim input, held constant
//   - [Constant]: a fixed, externally settable input
//   - [AltitudePID]: collective thrust about trim holding Z (three-input)
//   - [LQR]: static state feedback about a trim point; [NewAttitudeLQR]
//     builds pitch/roll damping gains for three-input models
//
// # Usage
//
//	pid := control.NewAltitudePID(craft.Equilibrium()[0], 1.7e-3, 0, 4.7e-4, 0)
//	sim := dynamo.New(craft, pid)
//
// Controllers implementing GetParams/SetParam support live tuning.
package control
