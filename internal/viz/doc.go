// Package viz renders a running ionocraft rollout in the terminal.
//
// [Live] is a Bubble Tea model that steps a vehicle in real time and shows
// a side view (X against altitude) on a braille [Canvas], an altitude trace
// and the named state.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state
//	Tab   - Select a controller gain (tunable controllers only)
//	Up/K  - Increase the selected gain by 5%
//	Down/J - Decrease the selected gain by 5%
//	Q     - Quit
package viz
