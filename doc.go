// Package extremetrack identifies and tracks spatiotemporal extreme events
// (marine heatwaves being the canonical use) on gridded geophysical fields.
//
// Given a time series of binary day masks on a longitude-latitude grid,
// possibly periodic in longitude or tiled over a small atlas of faces with
// declared edge adjacencies, the package labels spatially connected
// objects per day, links them across days into tracks with explicit split
// and merge handling, projects each track into a standard polar × lifecycle
// frame, and composites the normalised tensors across tracks.
//
// The package is a facade: the subsystems live in internal packages
// (grid topology, labelling, tracking, normalisation, compositing) and the
// orchestration entry points here are thin aliases over them. There is no
// file I/O, no persistence and no CLI at this layer; masks and anomaly
// fields are in-process views owned by the caller.
package extremetrack
