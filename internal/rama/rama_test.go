package rama

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/mdgridgo/internal/xvg"
)

func TestBlur_AreaPerSampleIsOneOverN(t *testing.T) {
	// A wide grid around the samples captures essentially the whole Gaussian,
	// so the numeric integral of the histogram is ~1 regardless of how many
	// samples were blurred in.
	blur := Blur{Low: -20, BinWidth: 0.1, Sigma: 0.8}
	grid := make([]float64, 600)
	blur.Apply([]float64{3.7, 8.1, 4.2}, grid)

	integral := 0.0
	for _, v := range grid {
		integral += v * blur.BinWidth
	}
	require.InDelta(t, 1.0, integral, 1e-6)
}

func TestBlur_PeaksAtSample(t *testing.T) {
	blur := Blur{Low: 0, BinWidth: 0.5, Sigma: 0.8}
	grid := make([]float64, 20)
	blur.Apply([]float64{5.0}, grid)

	peak := 0
	for i, v := range grid {
		if v > grid[peak] {
			peak = i
		}
	}
	require.Equal(t, 10, peak) // bin at x = 5.0
}

func TestBlur_EmptySamplesLeaveGridUntouched(t *testing.T) {
	blur := Blur{Low: 0, BinWidth: 1, Sigma: 1}
	grid := make([]float64, 5)
	blur.Apply(nil, grid)
	require.Equal(t, make([]float64, 5), grid)
}

func TestNewDensity_RejectsBadParameters(t *testing.T) {
	_, err := NewDensity(1, 10)
	require.Error(t, err)
	_, err = NewDensity(36, 0)
	require.Error(t, err)
}

func TestDensity_TotalWeightIsOne(t *testing.T) {
	d, err := NewDensity(72, 12)
	require.NoError(t, err)
	d.Accumulate([]xvg.Point{
		{Phi: -75, Psi: 145},
		{Phi: -60, Psi: -45},
	})

	cellArea := d.BinWidth() * d.BinWidth()
	integral := 0.0
	for _, row := range d.Cells {
		for _, v := range row {
			integral += v * cellArea
		}
	}
	// Periodic wrapping keeps all mass inside the domain.
	require.InDelta(t, 1.0, integral, 0.01)
}

func TestDensity_PeakNearSample(t *testing.T) {
	d, err := NewDensity(36, 8)
	require.NoError(t, err)
	d.Accumulate([]xvg.Point{{Phi: -75, Psi: 145}})

	peakX, peakY, best := 0, 0, 0.0
	for iy, row := range d.Cells {
		for ix, v := range row {
			if v > best {
				best, peakX, peakY = v, ix, iy
			}
		}
	}
	width := d.BinWidth()
	phi := -180 + (float64(peakX)+0.5)*width
	psi := -180 + (float64(peakY)+0.5)*width
	require.InDelta(t, -75, phi, width)
	require.InDelta(t, 145, psi, width)
}

func TestDensity_WrapsAcrossBoundary(t *testing.T) {
	d, err := NewDensity(36, 10)
	require.NoError(t, err)
	d.Accumulate([]xvg.Point{{Phi: 179, Psi: 0}})

	// Mass must leak to the opposite phi edge.
	row := d.Cells[18] // psi ~ 0
	require.Greater(t, row[0], row[len(row)/2])
}

func TestWrapAngle(t *testing.T) {
	require.InDelta(t, -179.0, wrapAngle(181), 1e-9)
	require.InDelta(t, 179.0, wrapAngle(-181), 1e-9)
	require.InDelta(t, 0.0, wrapAngle(360), 1e-9)
	require.InDelta(t, 45.0, wrapAngle(45), 1e-9)
}

func TestAverage_CombinesMemberGrids(t *testing.T) {
	a, _ := NewDensity(4, 5)
	b, _ := NewDensity(4, 5)
	a.Cells[0][0] = 2
	b.Cells[0][0] = 4
	b.Cells[1][1] = 6

	avg, err := Average([]*Density{a, b})
	require.NoError(t, err)
	require.Equal(t, 3.0, avg.Cells[0][0])
	require.Equal(t, 3.0, avg.Cells[1][1])
	require.Equal(t, 0.0, avg.Cells[2][2])
}

func TestAverage_RejectsMismatchedGrids(t *testing.T) {
	a, _ := NewDensity(4, 5)
	b, _ := NewDensity(8, 5)
	_, err := Average([]*Density{a, b})
	require.ErrorContains(t, err, "different sizes")

	_, err = Average(nil)
	require.Error(t, err)
}

func TestWriteSVG_EmitsOneRectPerCell(t *testing.T) {
	d, err := NewDensity(8, 10)
	require.NoError(t, err)
	d.Accumulate([]xvg.Point{{Phi: 0, Psi: 0}})

	var sb strings.Builder
	require.NoError(t, WriteSVG(&sb, d, "Ramachandran"))
	out := sb.String()
	require.Contains(t, out, "<svg")
	require.Contains(t, out, "Ramachandran")
	// 64 cells + background + frame.
	require.Equal(t, 8*8+2, strings.Count(out, "<rect"))
}

func TestHeatColor_Bounds(t *testing.T) {
	r, g, b := heatColor(0)
	require.Equal(t, []int{255, 255, 255}, []int{r, g, b})
	r, g, b = heatColor(1)
	require.Equal(t, []int{178, 24, 43}, []int{r, g, b})
	r, _, _ = heatColor(math.Inf(1))
	require.Equal(t, 178, r)
}

func TestRenderTerminal_DownsamplesLargeGrids(t *testing.T) {
	d, err := NewDensity(100, 10)
	require.NoError(t, err)
	d.Accumulate([]xvg.Point{{Phi: -75, Psi: 145}})

	out := RenderTerminal(d, 20)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// 20 heatmap rows plus the caption line.
	require.Len(t, lines, 21)
	require.Contains(t, lines[20], "100x100 bins")
}
