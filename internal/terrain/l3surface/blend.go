package l3surface

import "github.com/banshee-data/geovoxel/internal/terrain/grid"

// Blend runs up to iterations rounds of 8-neighbour majority smoothing. A
// cell flips only when a single material holds at least minMajority of its
// neighbours and differs from the cell's own material; ties at the top
// leave it unchanged. Pinned cells never flip and never vote, and water
// stays water. It returns the total number of flips and stops early once a
// round changes nothing.
func Blend(mat *grid.MaterialMap, iterations, minMajority int, pinned grid.CellSet) int {
	flips := 0
	counts := make(map[grid.Material]int, 8)
	for it := 0; it < iterations; it++ {
		src := mat.Clone()
		changed := 0
		src.Each(func(c grid.Cell, cur grid.Material) {
			if pinned.Has(c) || cur == grid.Water {
				return
			}
			clear(counts)
			for _, o := range grid.Neighbors8 {
				n := c.Add(o.DX, o.DZ)
				if pinned.Has(n) {
					continue
				}
				if m, ok := src.At(n); ok {
					counts[m]++
				}
			}
			var best grid.Material
			bestN, tied := 0, false
			for m, n := range counts {
				switch {
				case n > bestN:
					best, bestN, tied = m, n, false
				case n == bestN:
					tied = true
				}
			}
			if tied || bestN < minMajority || best == cur {
				return
			}
			mat.Set(c, best)
			changed++
		})
		flips += changed
		if changed == 0 {
			break
		}
	}
	return flips
}
