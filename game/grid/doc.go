// Package grid builds the procedural control panels. A panel is an occupancy
// matrix of shaped cells, each shape carrying one interactive widget drawn
// from a pool weighted by the shape's footprint. Generation is deterministic
// given a rand source and a name source, which makes it simulatable offline.
package grid
