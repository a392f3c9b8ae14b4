package monitor

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// DefaultMaxPoints bounds the scatter size of a height chart.
const DefaultMaxPoints = 40000

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// RenderHeightChart writes the height field as a coloured scatter, one
// point per sampled cell. Fields larger than maxPoints are downsampled by a
// uniform stride; maxPoints <= 0 uses DefaultMaxPoints.
func RenderHeightChart(hf *grid.HeightField, title string, maxPoints int, w io.Writer) error {
	if hf == nil || hf.Bounds().Empty() {
		return fmt.Errorf("no height field to chart")
	}
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	b := hf.Bounds()
	stride := chartStride(b.Area(), maxPoints)

	data := make([]opts.ScatterData, 0, b.Area()/(stride*stride)+1)
	lo, hi := math.MaxInt, math.MinInt
	for x := b.MinX; x <= b.MaxX; x += stride {
		for z := b.MinZ; z <= b.MaxZ; z += stride {
			level := hf.Get(grid.Cell{X: x, Z: z})
			lo, hi = min(lo, level), max(hi, level)
			data = append(data, opts.ScatterData{Value: []interface{}{x, z, level}})
		}
	}
	if hi == lo {
		hi = lo + 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Terrain Heights", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("bounds=%s points=%d stride=%d", b, len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: b.MinX, Max: b.MaxX, Name: "X (cells)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: b.MinZ, Max: b.MaxZ, Name: "Z (cells)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("level", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render height chart: %w", err)
	}
	return nil
}

// chartStride is the cell step along each axis that keeps a chart of area
// cells within maxPoints.
func chartStride(area, maxPoints int) int {
	if area <= maxPoints {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(area) / float64(maxPoints))))
}

// MaterialCount is the number of surface cells carrying one material.
type MaterialCount struct {
	Material grid.Material
	Cells    int
}

// CountMaterials tallies surface materials, most common first.
func CountMaterials(m *grid.MaterialMap) []MaterialCount {
	counts := map[grid.Material]int{}
	m.Each(func(_ grid.Cell, mat grid.Material) { counts[mat]++ })

	out := make([]MaterialCount, 0, len(counts))
	for mat, n := range counts {
		out = append(out, MaterialCount{Material: mat, Cells: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cells != out[j].Cells {
			return out[i].Cells > out[j].Cells
		}
		return out[i].Material < out[j].Material
	})
	return out
}

// RenderMaterialChart writes a bar chart of surface material counts.
func RenderMaterialChart(m *grid.MaterialMap, title string, w io.Writer) error {
	if m == nil {
		return fmt.Errorf("no material map to chart")
	}
	counts := CountMaterials(m)

	x := make([]string, len(counts))
	y := make([]opts.BarData, len(counts))
	for i, c := range counts {
		x[i] = string(c.Material)
		y[i] = opts.BarData{Value: c.Cells}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Surface Materials", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("bounds=%s", m.Bounds())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("cells", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render material chart: %w", err)
	}
	return nil
}
