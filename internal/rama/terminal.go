package rama

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// terminalRamp maps increasing density to background colors, cold to hot.
var terminalRamp = []lipgloss.Color{
	"#0b0b2a", "#1d2b53", "#2a4b8d", "#2196ac",
	"#2fb47c", "#a8cc3c", "#f2b134", "#e4572e", "#c2112e",
}

// RenderTerminal draws the density grid as an ANSI heatmap. Grids wider than
// maxCells columns are downsampled by averaging square blocks; each cell is
// rendered two characters wide to stay roughly square on screen.
func RenderTerminal(d *Density, maxCells int) string {
	if maxCells < 2 {
		maxCells = 2
	}
	cells, bins := downsample(d, maxCells)
	max := 0.0
	for _, row := range cells {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}

	var sb strings.Builder
	// psi bin 0 is -180; draw top row first.
	for iy := bins - 1; iy >= 0; iy-- {
		for ix := 0; ix < bins; ix++ {
			t := 0.0
			if max > 0 {
				t = cells[iy][ix] / max
			}
			idx := int(t * float64(len(terminalRamp)-1))
			style := lipgloss.NewStyle().Background(terminalRamp[idx])
			sb.WriteString(style.Render("  "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("phi/psi density, %dx%d bins, peak %.4g\n", d.Bins, d.Bins, d.Max()))
	return sb.String()
}

// downsample shrinks the grid to at most maxCells bins per axis by block
// averaging. Returns the original cells when no shrinking is needed.
func downsample(d *Density, maxCells int) ([][]float64, int) {
	if d.Bins <= maxCells {
		return d.Cells, d.Bins
	}
	factor := (d.Bins + maxCells - 1) / maxCells
	bins := (d.Bins + factor - 1) / factor

	out := make([][]float64, bins)
	for oy := range out {
		out[oy] = make([]float64, bins)
		for ox := range out[oy] {
			sum, n := 0.0, 0
			for iy := oy * factor; iy < (oy+1)*factor && iy < d.Bins; iy++ {
				for ix := ox * factor; ix < (ox+1)*factor && ix < d.Bins; ix++ {
					sum += d.Cells[iy][ix]
					n++
				}
			}
			if n > 0 {
				out[oy][ox] = sum / float64(n)
			}
		}
	}
	return out, bins
}
