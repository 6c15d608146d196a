// Package viz renders phase averaging results in the terminal.
//
//   - [RenderReport]: styled summary of a finished run
//   - [PlotMagnitudes], [PlotSamples]: asciigraph line plots
//   - [NewHistoryBrowser]: Bubble Tea list of past runs
//
// # Key Bindings
//
//	↑/k ↓/j - Move selection
//	Enter   - Show run details
//	Esc     - Back to the list
//	Q       - Quit
package viz
