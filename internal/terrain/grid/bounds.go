package grid

import "fmt"

// Bounds is an inclusive rectangle of cells. A Bounds with Max < Min on
// either axis is empty.
type Bounds struct {
	MinX int
	MinZ int
	MaxX int
	MaxZ int
}

// NewBounds returns the rectangle spanning both corners in any order.
func NewBounds(x0, z0, x1, z1 int) Bounds {
	return Bounds{MinX: min(x0, x1), MinZ: min(z0, z1), MaxX: max(x0, x1), MaxZ: max(z0, z1)}
}

// Empty reports whether the rectangle holds no cells.
func (b Bounds) Empty() bool {
	return b.MaxX < b.MinX || b.MaxZ < b.MinZ
}

// Width is the number of columns along x.
func (b Bounds) Width() int {
	if b.Empty() {
		return 0
	}
	return b.MaxX - b.MinX + 1
}

// Depth is the number of rows along z.
func (b Bounds) Depth() int {
	if b.Empty() {
		return 0
	}
	return b.MaxZ - b.MinZ + 1
}

// Area is the number of cells in the rectangle.
func (b Bounds) Area() int {
	return b.Width() * b.Depth()
}

// Contains reports whether c lies inside the rectangle.
func (b Bounds) Contains(c Cell) bool {
	return c.X >= b.MinX && c.X <= b.MaxX && c.Z >= b.MinZ && c.Z <= b.MaxZ
}

// Index maps an in-bounds cell to its dense offset. The layout is x-major
// so that Each visits cells in index order.
func (b Bounds) Index(c Cell) int {
	return (c.X-b.MinX)*b.Depth() + (c.Z - b.MinZ)
}

// CellAt is the inverse of Index.
func (b Bounds) CellAt(i int) Cell {
	d := b.Depth()
	return Cell{X: b.MinX + i/d, Z: b.MinZ + i%d}
}

// Intersect returns the overlap of two rectangles, possibly empty.
func (b Bounds) Intersect(o Bounds) Bounds {
	return Bounds{
		MinX: max(b.MinX, o.MinX),
		MinZ: max(b.MinZ, o.MinZ),
		MaxX: min(b.MaxX, o.MaxX),
		MaxZ: min(b.MaxZ, o.MaxZ),
	}
}

// Center returns the (rounded down) middle cell.
func (b Bounds) Center() Cell {
	return Cell{X: b.MinX + (b.MaxX-b.MinX)/2, Z: b.MinZ + (b.MaxZ-b.MinZ)/2}
}

// Each visits every cell x-major.
func (b Bounds) Each(fn func(Cell)) {
	for x := b.MinX; x <= b.MaxX; x++ {
		for z := b.MinZ; z <= b.MaxZ; z++ {
			fn(Cell{X: x, Z: z})
		}
	}
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d..%d]x[%d..%d]", b.MinX, b.MaxX, b.MinZ, b.MaxZ)
}
