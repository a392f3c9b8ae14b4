package l3surface

import (
	"fmt"
	"sort"

	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l1elevation"
)

// Input is everything the resolver reads. Landcover and Elevation are
// optional; Infrastructure holds cells claimed by paths or buildings, which
// never vote in residential zones.
type Input struct {
	Bounds         grid.Bounds
	Landcover      *grid.Layer[int]
	Elevation      *grid.ElevationMap
	Zones          []features.Feature
	Infrastructure grid.CellSet
}

// Result is the resolved surface.
type Result struct {
	Materials *grid.MaterialMap
	Beach     grid.CellSet // cells forced to sand by a zone
	ZoneCells int          // cells painted by any zone
	Skipped   int          // zones dropped for invalid geometry
	Flipped   int          // cells changed by smoothing
}

// Resolver assigns a material to every cell.
type Resolver struct {
	cfg      Config
	warnings *monitoring.CappedLog
	disc     []grid.Offset
}

// NewResolver returns a resolver using cfg.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{
		cfg:      cfg,
		warnings: monitoring.NewCappedLog("SurfaceResolver", cfg.MaxWarnings),
		disc:     discOffsets(cfg.VoteRadius),
	}
}

// Warnings returns the capped warning log for invalid zones.
func (r *Resolver) Warnings() *monitoring.CappedLog { return r.warnings }

// Resolve builds the base layer from land cover, paints zones smallest
// last, then smooths. Zone-painted and flooded cells are pinned through
// smoothing.
func (r *Resolver) Resolve(in Input) (*Result, error) {
	if in.Bounds.Empty() {
		return nil, fmt.Errorf("empty bounds %s: %w", in.Bounds, l1elevation.ErrMissingInput)
	}
	base, flooded := r.baseLayer(in)
	mat := base.Clone()
	res := &Result{Materials: mat, Beach: grid.CellSet{}}

	type paint struct {
		f    features.Feature
		poly []polyArea
		rule ZoneRule
		area float64
	}
	var zones []paint
	for _, f := range in.Zones {
		rule, ok := RuleForTags(f.Tags)
		if !ok {
			continue
		}
		polys, area, err := validPolygons(f)
		if err != nil {
			res.Skipped++
			r.warnings.Reportf("zone %s skipped: %v", f.ID, err)
			continue
		}
		zones = append(zones, paint{f: f, poly: polys, rule: rule, area: area})
	}
	sort.SliceStable(zones, func(i, j int) bool { return zones[i].area > zones[j].area })

	pinned := flooded
	for _, z := range zones {
		for _, p := range z.poly {
			for _, c := range features.RasterizePolygon(p.poly, in.Bounds) {
				res.ZoneCells++
				pinned.Add(c)
				switch z.rule.Kind {
				case ZoneSand:
					mat.Set(c, grid.Sand)
					res.Beach.Add(c)
				case ZoneResidential:
					mat.Set(c, r.vote(base, in.Infrastructure, c))
					delete(res.Beach, c)
				default:
					mat.Set(c, z.rule.Material)
					delete(res.Beach, c)
				}
			}
		}
	}

	res.Flipped = Blend(mat, r.cfg.BlurIterations, r.cfg.MinMajority, pinned)
	monitoring.Logf("[SurfaceResolver] %d zones painted %d cells, %d skipped, smoothing flipped %d",
		len(zones), res.ZoneCells, res.Skipped, res.Flipped)
	return res, nil
}

// baseLayer classifies land cover and returns the cells flooded by the sea
// level.
func (r *Resolver) baseLayer(in Input) (*grid.MaterialMap, grid.CellSet) {
	mat := grid.NewLayer(in.Bounds, grid.Ground)
	flooded := grid.CellSet{}
	in.Bounds.Each(func(c grid.Cell) {
		code := l1elevation.NoClass
		if in.Landcover != nil {
			if v, ok := in.Landcover.At(c); ok {
				code = v
			}
		}
		m := LandcoverMaterial(code)
		if r.cfg.Flood && in.Elevation != nil {
			if e, ok := in.Elevation.At(c); ok && e <= r.cfg.SeaLevel {
				m = grid.Water
				flooded.Add(c)
			}
		}
		mat.Set(c, m)
	})
	return mat, flooded
}

// vote returns the most common base material within the vote radius of c,
// ignoring infrastructure. Ties go to the lexically smallest material and
// an empty neighbourhood yields Ground.
func (r *Resolver) vote(base *grid.MaterialMap, infra grid.CellSet, c grid.Cell) grid.Material {
	counts := make(map[grid.Material]int)
	for _, o := range r.disc {
		n := c.Add(o.DX, o.DZ)
		m, ok := base.At(n)
		if !ok || infra.Has(n) || m.IsInfrastructure() {
			continue
		}
		counts[m]++
	}
	best, bestN := grid.Ground, 0
	for m, n := range counts {
		if n > bestN || (n == bestN && m < best) {
			best, bestN = m, n
		}
	}
	return best
}

func discOffsets(radius int) []grid.Offset {
	var out []grid.Offset
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if dx*dx+dz*dz <= radius*radius {
				out = append(out, grid.Offset{DX: dx, DZ: dz})
			}
		}
	}
	return out
}
