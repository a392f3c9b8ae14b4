package l1elevation

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// SRTMTile is one 1x1 degree .hgt tile. Tiles are named by their
// south-west corner but rows start at the northern edge, and adjacent tiles
// share one row and one column.
type SRTMTile struct {
	Lat  int // south edge
	Lon  int // west edge
	Size int // samples per side, 1201 (SRTM3) or 3601 (SRTM1)
	data []int16
}

// ParseTileName extracts the south-west corner from names like
// "N47E008.hgt" or "S12W077.hgt.zip".
func ParseTileName(name string) (lat, lon int, err error) {
	base := strings.ToUpper(filepath.Base(name))
	var ns, ew string
	if _, err := fmt.Sscanf(base, "%1s%2d%1s%3d", &ns, &lat, &ew, &lon); err != nil {
		return 0, 0, fmt.Errorf("failed to parse tile name %q: %w", name, err)
	}
	switch ns {
	case "N":
	case "S":
		lat = -lat
	default:
		return 0, 0, fmt.Errorf("tile name %q: bad hemisphere %q", name, ns)
	}
	switch ew {
	case "E":
	case "W":
		lon = -lon
	default:
		return 0, 0, fmt.Errorf("tile name %q: bad hemisphere %q", name, ew)
	}
	return lat, lon, nil
}

// ReadHGT decodes raw big-endian int16 samples. The tile size is inferred
// from the byte count.
func ReadHGT(r io.Reader, lat, lon int) (*SRTMTile, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read hgt data: %w", err)
	}
	var size int
	switch len(b) {
	case 1201 * 1201 * 2:
		size = 1201
	case 3601 * 3601 * 2:
		size = 3601
	default:
		return nil, fmt.Errorf("unexpected hgt size %d bytes", len(b))
	}
	data := make([]int16, size*size)
	for i := range data {
		data[i] = int16(binary.BigEndian.Uint16(b[2*i:]))
	}
	return &SRTMTile{Lat: lat, Lon: lon, Size: size, data: data}, nil
}

// OpenHGT loads a tile from a .hgt file or a .hgt.zip holding one.
func OpenHGT(path string) (*SRTMTile, error) {
	lat, lon, err := ParseTileName(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".zip") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open tile: %w", err)
		}
		defer f.Close()
		return ReadHGT(f, lat, lon)
	}

	z, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tile archive: %w", err)
	}
	defer z.Close()
	for _, sf := range z.File {
		if strings.HasPrefix(filepath.Base(sf.Name), ".") || !strings.HasSuffix(strings.ToLower(sf.Name), ".hgt") {
			continue
		}
		f, err := sf.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in archive: %w", sf.Name, err)
		}
		defer f.Close()
		return ReadHGT(f, lat, lon)
	}
	return nil, fmt.Errorf("no .hgt entry in %s", path)
}

// Sample implements ElevationRaster with nearest-sample lookup.
func (t *SRTMTile) Sample(lon, lat float64) (float64, bool) {
	fx := lon - float64(t.Lon)
	fy := float64(t.Lat+1) - lat
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, false
	}
	n := float64(t.Size - 1)
	col := int(math.Round(fx * n))
	row := int(math.Round(fy * n))
	v := t.data[row*t.Size+col]
	if v == srtmVoid {
		return 0, false
	}
	return float64(v), true
}

// TileSet samples whichever tile covers the requested point.
type TileSet []*SRTMTile

// Sample implements ElevationRaster.
func (s TileSet) Sample(lon, lat float64) (float64, bool) {
	for _, t := range s {
		if v, ok := t.Sample(lon, lat); ok {
			return v, true
		}
	}
	return 0, false
}
