package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/l4paths"
	"github.com/banshee-data/geovoxel/internal/terrain/l5profiles"
)

// Section is the longitudinal cut through one structure: the deck or floor
// level and the committed ground level at each centerline cell.
type Section struct {
	FeatureID string
	Mode      l4paths.Mode
	Deck      []int
	Ground    []int
	Portals   [2]int
}

// NewSection samples the ground under the profile's centerline.
func NewSection(p *l5profiles.Profile, seg *l4paths.Segment, s l5profiles.Surface) (Section, error) {
	if len(p.Centerline) != seg.Length() {
		return Section{}, fmt.Errorf("profile %s has %d centerline levels for %d cells", p.FeatureID, len(p.Centerline), seg.Length())
	}
	ground := make([]int, seg.Length())
	for i, c := range seg.Centerline {
		ground[i] = s.LevelAt(c)
	}
	return Section{
		FeatureID: p.FeatureID,
		Mode:      p.Mode,
		Deck:      append([]int(nil), p.Centerline...),
		Ground:    ground,
		Portals:   p.Portals,
	}, nil
}

// Clearance returns the smallest deck-minus-ground gap and its index. For
// tunnels it is negative where the bore runs under the terrain.
func (s Section) Clearance() (gap, at int) {
	for i := range s.Deck {
		d := s.Deck[i] - s.Ground[i]
		if i == 0 || d < gap {
			gap, at = d, i
		}
	}
	return gap, at
}

func (s Section) plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s - %d cells", s.Mode, s.FeatureID, len(s.Deck))
	p.X.Label.Text = "Centerline cell"
	p.Y.Label.Text = "Level"

	deckPts := make(plotter.XYs, len(s.Deck))
	groundPts := make(plotter.XYs, len(s.Ground))
	for i := range s.Deck {
		deckPts[i] = plotter.XY{X: float64(i), Y: float64(s.Deck[i])}
		groundPts[i] = plotter.XY{X: float64(i), Y: float64(s.Ground[i])}
	}

	groundLine, err := plotter.NewLine(groundPts)
	if err != nil {
		return nil, fmt.Errorf("ground line: %w", err)
	}
	groundLine.Width = vg.Points(1)
	groundLine.Color = color.RGBA{R: 110, G: 80, B: 40, A: 255}
	p.Add(groundLine)
	p.Legend.Add("ground", groundLine)

	deckLine, err := plotter.NewLine(deckPts)
	if err != nil {
		return nil, fmt.Errorf("deck line: %w", err)
	}
	deckLine.Width = vg.Points(1.5)
	deckLine.Color = color.RGBA{R: 49, G: 104, B: 142, A: 255}
	p.Add(deckLine)
	p.Legend.Add(deckLabel(s.Mode), deckLine)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func deckLabel(m l4paths.Mode) string {
	if m == l4paths.ModeTunnel {
		return "floor"
	}
	return "deck"
}

// SavePNG writes the section chart to path.
func (s Section) SavePNG(path string) error {
	if len(s.Deck) < 2 {
		return fmt.Errorf("section %s is too short to plot", s.FeatureID)
	}
	p, err := s.plot()
	if err != nil {
		return err
	}
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save section plot: %w", err)
	}
	return nil
}

// SectionFileName maps a feature ID to a file-safe PNG name.
func SectionFileName(s Section) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s.FeatureID)
	return fmt.Sprintf("%s_%s.png", s.Mode, id)
}

// WriteSections saves one PNG per section into dir and returns the number
// written. Sections too short to plot are skipped.
func WriteSections(dir string, sections []Section) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create section dir: %w", err)
	}
	written := 0
	for _, s := range sections {
		if len(s.Deck) < 2 {
			continue
		}
		if err := s.SavePNG(filepath.Join(dir, SectionFileName(s))); err != nil {
			return written, fmt.Errorf("section %s: %w", s.FeatureID, err)
		}
		written++
	}
	monitoring.Logf("[Monitor] wrote %d section plots to %s", written, dir)
	return written, nil
}

// SectionsOf pairs each profile with the segment it was built from and
// samples its section. Profiles whose segment cannot be found are skipped.
func SectionsOf(profiles []*l5profiles.Profile, segments []*l4paths.Segment, s l5profiles.Surface) []Section {
	used := make([]bool, len(segments))
	out := make([]Section, 0, len(profiles))
	for _, p := range profiles {
		for i, seg := range segments {
			if used[i] || seg.FeatureID != p.FeatureID || seg.Mode != p.Mode || seg.Length() != p.Length {
				continue
			}
			used[i] = true
			sec, err := NewSection(p, seg, s)
			if err != nil {
				monitoring.Logf("[Monitor] skipping section %s: %v", p.FeatureID, err)
				break
			}
			out = append(out, sec)
			break
		}
	}
	return out
}
