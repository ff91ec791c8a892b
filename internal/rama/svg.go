package rama

import (
	"fmt"
	"io"
	"os"
)

const (
	svgCellSize = 4
	svgMargin   = 40
)

// WriteSVGFile renders the density grid as an SVG heatmap at path.
func WriteSVGFile(path string, d *Density, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating svg file: %w", err)
	}
	if err := WriteSVG(f, d, title); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// WriteSVG renders the density grid as an SVG heatmap. Cell brightness is
// scaled linearly against the grid maximum; psi increases upward as in the
// conventional Ramachandran diagram.
func WriteSVG(w io.Writer, d *Density, title string) error {
	plot := d.Bins * svgCellSize
	width := plot + 2*svgMargin
	height := plot + 2*svgMargin
	max := d.Max()

	var err error
	printf := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	printf(`<rect width="%d" height="%d" fill="white"/>`+"\n", width, height)
	if title != "" {
		printf(`<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="14">%s</text>`+"\n",
			width/2, svgMargin/2, title)
	}

	for iy, row := range d.Cells {
		for ix, v := range row {
			t := 0.0
			if max > 0 {
				t = v / max
			}
			// psi bin 0 is -180, drawn at the bottom.
			x := svgMargin + ix*svgCellSize
			y := svgMargin + (d.Bins-1-iy)*svgCellSize
			r, g, b := heatColor(t)
			printf(`<rect x="%d" y="%d" width="%d" height="%d" fill="rgb(%d,%d,%d)"/>`+"\n",
				x, y, svgCellSize, svgCellSize, r, g, b)
		}
	}

	printf(`<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="black"/>`+"\n",
		svgMargin, svgMargin, plot, plot)
	printf(`<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="12">phi (deg)</text>`+"\n",
		svgMargin+plot/2, svgMargin+plot+24)
	printf(`<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="12" transform="rotate(-90 %d %d)">psi (deg)</text>`+"\n",
		svgMargin-24, svgMargin+plot/2, svgMargin-24, svgMargin+plot/2)
	printf("</svg>\n")
	return err
}

// heatColor maps a normalized density to a white-to-blue-to-red ramp.
func heatColor(t float64) (int, int, int) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	if t < 0.5 {
		// white -> blue
		u := t * 2
		return lerp(255, 33, u), lerp(255, 102, u), lerp(255, 172, u)
	}
	// blue -> red
	u := (t - 0.5) * 2
	return lerp(33, 178, u), lerp(102, 24, u), lerp(172, 43, u)
}

func lerp(a, b int, t float64) int {
	return a + int(t*float64(b-a))
}
