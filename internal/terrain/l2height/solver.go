package l2height

import (
	"math"
	"sort"

	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// SolveResult reports how the relaxation ended.
type SolveResult struct {
	Converged        bool // both phases reached a fixed point within MaxIterations
	PhaseAIterations int
	PhaseBIterations int
	Settled          int // cells lowered by the final settle pass
}

// Solve relaxes hf in place until every king-adjacent pair differs by at
// most one level.
//
// Phase A lowers the higher cell of any 4-adjacent pair further apart than
// HardCap. Phase B visits every pair up to TerraceDistance apart, pulls the
// cells on the connecting line towards the proportional level and clamps
// the endpoints against their line neighbours. Both phases stop at a fixed
// point or MaxIterations. A settle pass then lowers any cell still more
// than one level above a neighbour, so the adjacency property holds even
// when a phase hit its cap; Converged reports whether that was needed.
//
// On a field that already satisfies the property Solve changes nothing.
func Solve(hf *grid.HeightField, cfg SolverConfig) SolveResult {
	var res SolveResult
	aDone := false
	for res.PhaseAIterations < cfg.MaxIterations {
		res.PhaseAIterations++
		if !hardCapSweep(hf, cfg.HardCap) {
			aDone = true
			break
		}
	}

	offsets := terraceOffsets(cfg.TerraceDistance)
	bDone := false
	for res.PhaseBIterations < cfg.MaxIterations {
		res.PhaseBIterations++
		if !terraceSweep(hf, offsets) {
			bDone = true
			break
		}
	}

	res.Settled = Settle(hf)
	res.Converged = aDone && bDone
	if !res.Converged {
		monitoring.Logf("[SlopeSolver] iteration cap %d reached (phaseA=%d phaseB=%d), settle lowered %d cells",
			cfg.MaxIterations, res.PhaseAIterations, res.PhaseBIterations, res.Settled)
	}
	return res
}

// SolveAndSmooth runs Solve, then MedianPasses of median smoothing followed
// by a second Solve to restore the adjacency property.
func SolveAndSmooth(hf *grid.HeightField, cfg SolverConfig) SolveResult {
	res := Solve(hf, cfg)
	if cfg.MedianPasses == 0 {
		return res
	}
	MedianSmooth(hf, cfg.MedianPasses)
	again := Solve(hf, cfg)
	again.Converged = again.Converged && res.Converged
	again.PhaseAIterations += res.PhaseAIterations
	again.PhaseBIterations += res.PhaseBIterations
	again.Settled += res.Settled
	return again
}

func hardCapSweep(hf *grid.HeightField, hardCap int) bool {
	changed := false
	b := hf.Bounds()
	b.Each(func(c grid.Cell) {
		for _, n := range [2]grid.Cell{c.Add(1, 0), c.Add(0, 1)} {
			ln, ok := hf.At(n)
			if !ok {
				continue
			}
			lc := hf.Get(c)
			switch {
			case lc-ln > hardCap:
				hf.Set(c, ln+hardCap)
				changed = true
			case ln-lc > hardCap:
				hf.Set(n, lc+hardCap)
				changed = true
			}
		}
	})
	return changed
}

// terraceOffsets returns one offset per unordered pair at Chebyshev
// distance 1..d, nearest first.
func terraceOffsets(d int) []grid.Offset {
	var out []grid.Offset
	for r := 1; r <= d; r++ {
		for dz := 0; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), dz) != r {
					continue
				}
				if dz == 0 && dx < 0 {
					continue
				}
				out = append(out, grid.Offset{DX: dx, DZ: dz})
			}
		}
	}
	return out
}

func terraceSweep(hf *grid.HeightField, offsets []grid.Offset) bool {
	changed := false
	b := hf.Bounds()
	b.Each(func(a grid.Cell) {
		for _, o := range offsets {
			end := a.Add(o.DX, o.DZ)
			if !b.Contains(end) {
				continue
			}
			if terracePair(hf, grid.Line(a, end)) {
				changed = true
			}
		}
	})
	return changed
}

// terracePair relaxes one pair along its connecting line. Cell i of a
// Bresenham line is i steps from the start, so a field that already meets
// the adjacency property keeps every interior cell within one level of its
// proportional target and nothing is written.
func terracePair(hf *grid.HeightField, line []grid.Cell) bool {
	d := len(line) - 1
	la, lb := hf.Get(line[0]), hf.Get(line[d])
	delta := lb - la
	if abs(delta) <= 1 {
		return false
	}
	changed := false
	for i := 1; i < d; i++ {
		want := la + int(math.Round(float64(delta*i)/float64(d)))
		if cur := hf.Get(line[i]); abs(cur-want) > 1 {
			hf.Set(line[i], want)
			changed = true
		}
	}
	if next := hf.Get(line[1]); hf.Get(line[0]) > next+1 {
		hf.Set(line[0], next+1)
		changed = true
	}
	if prev := hf.Get(line[d-1]); hf.Get(line[d]) > prev+1 {
		hf.Set(line[d], prev+1)
		changed = true
	}
	return changed
}

// Settle lowers cells so that no cell sits more than one level above any
// king neighbour, using a forward and a backward chamfer sweep. It only
// ever lowers, and returns how many cells changed.
func Settle(hf *grid.HeightField) int {
	b := hf.Bounds()
	if b.Empty() {
		return 0
	}
	before := hf.Clone()
	forward := [4]grid.Offset{{DX: -1, DZ: -1}, {DX: -1, DZ: 0}, {DX: -1, DZ: 1}, {DX: 0, DZ: -1}}
	backward := [4]grid.Offset{{DX: 1, DZ: 1}, {DX: 1, DZ: 0}, {DX: 1, DZ: -1}, {DX: 0, DZ: 1}}

	relax := func(c grid.Cell, mask [4]grid.Offset) {
		lc := hf.Get(c)
		for _, o := range mask {
			if ln, ok := hf.At(c.Add(o.DX, o.DZ)); ok && lc > ln+1 {
				lc = ln + 1
			}
		}
		hf.Set(c, lc)
	}
	for x := b.MinX; x <= b.MaxX; x++ {
		for z := b.MinZ; z <= b.MaxZ; z++ {
			relax(grid.Cell{X: x, Z: z}, forward)
		}
	}
	for x := b.MaxX; x >= b.MinX; x-- {
		for z := b.MaxZ; z >= b.MinZ; z-- {
			relax(grid.Cell{X: x, Z: z}, backward)
		}
	}

	lowered := 0
	for i, v := range hf.Values() {
		if v != before.Values()[i] {
			lowered++
		}
	}
	return lowered
}

// MedianSmooth moves each level halfway towards the median of its eight
// neighbours, rounding down, for passes rounds. Neighbours outside the field
// count as the cell itself. It can break the adjacency property; run Solve
// afterwards.
func MedianSmooth(hf *grid.HeightField, passes int) {
	window := make([]int, len(grid.Neighbors8))
	for p := 0; p < passes; p++ {
		src := hf.Clone()
		src.Each(func(c grid.Cell, v int) {
			for i, o := range grid.Neighbors8 {
				nv, ok := src.At(c.Add(o.DX, o.DZ))
				if !ok {
					nv = v
				}
				window[i] = nv
			}
			sort.Ints(window)
			med := window[len(window)/2]
			hf.Set(c, floorDiv(med+v, 2))
		})
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Violation is a king-adjacent pair further apart than one level.
type Violation struct {
	A, B  grid.Cell
	Delta int
}

// CheckAdjacency lists every king-adjacent pair whose levels differ by
// more than one.
func CheckAdjacency(hf *grid.HeightField) []Violation {
	var out []Violation
	half := [4]grid.Offset{{DX: 1}, {DZ: 1}, {DX: 1, DZ: 1}, {DX: 1, DZ: -1}}
	hf.Each(func(c grid.Cell, v int) {
		for _, o := range half {
			n := c.Add(o.DX, o.DZ)
			if nv, ok := hf.At(n); ok && abs(nv-v) > 1 {
				out = append(out, Violation{A: c, B: n, Delta: nv - v})
			}
		}
	})
	return out
}
