package grid

import (
	"fmt"
	"sort"
)

// Cell is one horizontal grid position. X runs east, Z runs south.
type Cell struct {
	X int
	Z int
}

// Add returns the cell offset by (dx, dz).
func (c Cell) Add(dx, dz int) Cell {
	return Cell{X: c.X + dx, Z: c.Z + dz}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Offset is a relative cell displacement.
type Offset struct {
	DX int
	DZ int
}

// Neighbors4 are the edge-adjacent offsets.
var Neighbors4 = [4]Offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Neighbors8 are the edge- and corner-adjacent offsets.
var Neighbors8 = [8]Offset{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Chebyshev returns the king-move distance between two cells.
func Chebyshev(a, b Cell) int {
	return max(abs(a.X-b.X), abs(a.Z-b.Z))
}

// Manhattan returns the taxicab distance between two cells.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Z-b.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CellSet is an unordered set of cells.
type CellSet map[Cell]struct{}

// NewCellSet returns a set holding cells.
func NewCellSet(cells ...Cell) CellSet {
	s := make(CellSet, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts c.
func (s CellSet) Add(c Cell) { s[c] = struct{}{} }

// Has reports whether c is in the set.
func (s CellSet) Has(c Cell) bool {
	_, ok := s[c]
	return ok
}

// Union adds every cell of o to s.
func (s CellSet) Union(o CellSet) {
	for c := range o {
		s[c] = struct{}{}
	}
}

// Sorted returns the cells ordered x-major, for deterministic iteration.
func (s CellSet) Sorted() []Cell {
	out := make([]Cell, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	SortCells(out)
	return out
}

// SortCells orders cells x-major then z.
func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].X != cells[j].X {
			return cells[i].X < cells[j].X
		}
		return cells[i].Z < cells[j].Z
	})
}
