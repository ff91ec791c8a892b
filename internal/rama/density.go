package rama

import (
	"fmt"
	"math"

	"github.com/vk/mdgridgo/internal/xvg"
)

// angleLow and angleHigh bound the phi/psi domain in degrees.
const (
	angleLow  = -180.0
	angleHigh = 180.0
)

// Density is a square phi/psi density grid over [-180, 180)². Cells are
// indexed [psi bin][phi bin], psi bin 0 at -180 degrees.
type Density struct {
	Bins  int
	Sigma float64
	Cells [][]float64
}

// NewDensity allocates a zeroed grid.
func NewDensity(bins int, sigma float64) (*Density, error) {
	if bins < 2 {
		return nil, fmt.Errorf("density grid needs at least 2 bins per axis, got %d", bins)
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("sigma must be positive, got %g", sigma)
	}
	cells := make([][]float64, bins)
	for i := range cells {
		cells[i] = make([]float64, bins)
	}
	return &Density{Bins: bins, Sigma: sigma, Cells: cells}, nil
}

// BinWidth is the angular width of one cell.
func (d *Density) BinWidth() float64 {
	return (angleHigh - angleLow) / float64(d.Bins)
}

// Max returns the largest cell value.
func (d *Density) Max() float64 {
	max := 0.0
	for _, row := range d.Cells {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// Accumulate blurs the samples onto the grid with a product of two Gaussians,
// normalized so each sample contributes total weight 1/len(points). Dihedral
// angles are periodic, so distances wrap across the ±180 boundary.
func (d *Density) Accumulate(points []xvg.Point) {
	if len(points) == 0 {
		return
	}
	sigma2 := d.Sigma * d.Sigma
	denominator := 1.0 / (2 * sigma2)
	normalization := 1.0 / (float64(len(points)) * 2 * math.Pi * sigma2)

	width := d.BinWidth()
	for iy, row := range d.Cells {
		binPsi := angleLow + (float64(iy)+0.5)*width
		for ix := range row {
			binPhi := angleLow + (float64(ix)+0.5)*width
			value := 0.0
			for _, p := range points {
				dPhi := wrapAngle(binPhi - p.Phi)
				dPsi := wrapAngle(binPsi - p.Psi)
				value += normalization * math.Exp(-(dPhi*dPhi+dPsi*dPsi)*denominator)
			}
			row[ix] += value
		}
	}
}

// wrapAngle maps a degree difference into [-180, 180).
func wrapAngle(deg float64) float64 {
	deg = math.Mod(deg+angleHigh, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg + angleLow
}

// Average combines several grids cell by cell, e.g. one grid per ensemble
// member, into their mean. All grids must agree on the bin count.
func Average(grids []*Density) (*Density, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("cannot average zero density grids")
	}
	out, err := NewDensity(grids[0].Bins, grids[0].Sigma)
	if err != nil {
		return nil, err
	}
	for _, g := range grids {
		if g.Bins != out.Bins {
			return nil, fmt.Errorf("cannot average grids of different sizes: %d vs %d", out.Bins, g.Bins)
		}
		for iy, row := range g.Cells {
			for ix, v := range row {
				out.Cells[iy][ix] += v
			}
		}
	}
	n := float64(len(grids))
	for _, row := range out.Cells {
		for ix := range row {
			row[ix] /= n
		}
	}
	return out, nil
}
