// Package pipeline runs the terrain layers in order.
//
// This package is the composition root: it imports every layer package
// (l1elevation through l6composite) and wires optional adapters (a voxel
// sink and a snapshot store), but none of those packages import pipeline.
//
// A run is an explicit sequence of stages. Each stage declares the world
// layers it reads and writes, and the sequence is validated before any
// stage runs, so a stage can never observe a layer that no earlier stage
// produced.
package pipeline
