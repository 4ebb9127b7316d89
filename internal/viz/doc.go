// Package viz renders trajectories for the terminal and for files:
// asciigraph line plots for quick inspection, a bubbletea playback
// viewer for watching a run unfold, and go-chart PNG export for
// figures with observation overlays.
package viz
