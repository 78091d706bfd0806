// Package viz renders a running universe in the terminal.
//
// The live view is a Bubble Tea [Model] that owns a *space.Universe, ticks
// it on every frame and draws it on a braille [Canvas]:
//
//   - each body is a disc in its own color, stars holding an emitter slot
//     slightly larger
//   - recent positions are kept as trails
//   - the side panel shows elapsed time, step duration, view scale, the
//     focus body and an energy chart
//
// # Key Bindings
//
//	Space    - Pause/Resume simulation
//	+ / -    - Zoom in / out
//	N        - Focus the next body
//	A        - Add a small planet orbiting the focus body
//	Del      - Remove the most recently added body
//	[ / ]    - Halve / double the step duration
//	T        - Cycle color themes
//	G        - Toggle GIF recording
//	?        - Show help overlay
//
// Registry errors (for example removing from an empty universe) are shown in
// the status line and never end the program.
package viz
