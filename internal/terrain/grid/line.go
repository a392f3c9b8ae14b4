package grid

// Line returns the integer Bresenham line from a to b, both ends included.
// The result is never empty; a == b yields a single cell.
func Line(a, b Cell) []Cell {
	dx := abs(b.X - a.X)
	dz := abs(b.Z - a.Z)
	sx, sz := 1, 1
	if b.X < a.X {
		sx = -1
	}
	if b.Z < a.Z {
		sz = -1
	}

	out := make([]Cell, 0, max(dx, dz)+1)
	x, z := a.X, a.Z
	err := dx - dz
	for {
		out = append(out, Cell{X: x, Z: z})
		if x == b.X && z == b.Z {
			return out
		}
		e2 := 2 * err
		if e2 > -dz {
			err -= dz
			x += sx
		}
		if e2 < dx {
			err += dx
			z += sz
		}
	}
}

// Polyline joins Line segments between consecutive vertices. Each cell
// appears once, at its first visit, so shared vertices and self-crossings
// do not repeat.
func Polyline(vertices []Cell) []Cell {
	if len(vertices) == 0 {
		return nil
	}
	seen := NewCellSet(vertices[0])
	out := []Cell{vertices[0]}
	for i := 1; i < len(vertices); i++ {
		for _, c := range Line(vertices[i-1], vertices[i]) {
			if seen.Has(c) {
				continue
			}
			seen.Add(c)
			out = append(out, c)
		}
	}
	return out
}
