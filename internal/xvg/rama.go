package xvg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Point is one backbone dihedral sample: the phi/psi angle pair in degrees
// and the residue label the tool attaches to it.
type Point struct {
	Phi   float64
	Psi   float64
	Label string
}

// ReadRamachandranFile parses the phi/psi table written by `gmx rama`.
func ReadRamachandranFile(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rama file: %w", err)
	}
	defer f.Close()
	points, err := ReadRamachandran(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// ReadRamachandran parses rows of `phi psi [label]`. Comment and directive
// lines are dropped the same way Read drops them.
func ReadRamachandran(r io.Reader) ([]Point, error) {
	var points []Point

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected at least phi and psi columns, got %d fields", lineNo, len(fields))
		}
		phi, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: phi %q is not a number", lineNo, fields[0])
		}
		psi, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: psi %q is not a number", lineNo, fields[1])
		}

		point := Point{Phi: phi, Psi: psi}
		if len(fields) > 2 {
			point.Label = strings.Join(fields[2:], " ")
		}
		points = append(points, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rama data: %w", err)
	}
	return points, nil
}
