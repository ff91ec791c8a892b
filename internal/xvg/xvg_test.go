package xvg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTable = `# This file was created by gmx
# Command line: gmx rama -s input.tpr -f traj.trr
@    title "Ramachandran Plot"
@    xaxis  label "Phi"
@    yaxis  label "Psi"
@ s0 symbol 2
-75.5  145.2
-60.1  -45.3
 120.0  30.7
`

func TestRead_DropsCommentsAndDirectives(t *testing.T) {
	table, err := Read(strings.NewReader(sampleTable), Options{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	require.Equal(t, []float64{-75.5, -60.1, 120.0}, table.Column(0))
	require.Equal(t, []float64{145.2, -45.3, 30.7}, table.Column(1))
}

func TestRead_SkipsLeadingDataRowsOnly(t *testing.T) {
	// Comment lines interleaved with data must not count toward the skip.
	input := "# header\n1 2\n@ directive\n3 4\n5 6\n"
	table, err := Read(strings.NewReader(input), Options{SkipRows: 2})
	require.NoError(t, err)
	require.Equal(t, [][]float64{{5, 6}}, table.Rows)
}

func TestRead_SkipBeyondTableIsAnError(t *testing.T) {
	_, err := Read(strings.NewReader("1 2\n"), Options{SkipRows: 5})
	require.ErrorContains(t, err, "skip")
}

func TestRead_NegativeSkipIsRejected(t *testing.T) {
	_, err := Read(strings.NewReader("1 2\n"), Options{SkipRows: -1})
	require.ErrorContains(t, err, "negative")
}

func TestRead_SelectsColumns(t *testing.T) {
	input := "0.0 -75.5 145.2\n0.1 -60.1 -45.3\n"
	table, err := Read(strings.NewReader(input), Options{Columns: []int{1, 2}})
	require.NoError(t, err)
	require.Equal(t, [][]float64{{-75.5, 145.2}, {-60.1, -45.3}}, table.Rows)
}

func TestRead_ErrorsCarryLineNumbers(t *testing.T) {
	input := "# header\n1 2\n3 oops\n"
	_, err := Read(strings.NewReader(input), Options{})
	require.ErrorContains(t, err, "line 3")
}

func TestRead_RaggedRowsAreRejected(t *testing.T) {
	input := "1 2\n3 4 5\n"
	_, err := Read(strings.NewReader(input), Options{})
	require.ErrorContains(t, err, "expected 2 columns")
}

func TestRead_MissingSelectedColumnIsAnError(t *testing.T) {
	_, err := Read(strings.NewReader("1 2\n"), Options{Columns: []int{4}})
	require.ErrorContains(t, err, "row has 2 fields")
}

func TestReadFile_WrapsPathInErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xvg")
	require.NoError(t, os.WriteFile(path, []byte("not numbers\n"), 0o644))

	_, err := ReadFile(path, Options{})
	require.ErrorContains(t, err, "bad.xvg")
}

func TestReadRamachandran_ParsesAnglesAndLabels(t *testing.T) {
	input := `@ title "Ramachandran Plot"
-75.5  145.2  ALA-2
-60.1  -45.3  ALA-2
`
	points, err := ReadRamachandran(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, Point{Phi: -75.5, Psi: 145.2, Label: "ALA-2"}, points[0])
	require.Equal(t, -45.3, points[1].Psi)
}

func TestReadRamachandran_RejectsShortRows(t *testing.T) {
	_, err := ReadRamachandran(strings.NewReader("-75.5\n"))
	require.ErrorContains(t, err, "line 1")
}
