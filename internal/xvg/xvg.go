// Package xvg parses the whitespace-delimited numeric tables written by
// GROMACS analysis tools. Lines starting with '#' (comments) and '@' (grace
// plotting directives) are always dropped; a caller may additionally skip a
// declared number of leading data rows.
package xvg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Options control table parsing.
type Options struct {
	// SkipRows drops this many leading data rows after comment filtering.
	SkipRows int
	// Columns selects which whitespace-separated fields to parse, by
	// zero-based index. Nil parses every field of every row.
	Columns []int
}

// Table is a parsed table. Every row has the same number of columns.
type Table struct {
	Rows [][]float64
}

// Column returns one column of the table.
func (t *Table) Column(i int) []float64 {
	out := make([]float64, len(t.Rows))
	for n, row := range t.Rows {
		out[n] = row[i]
	}
	return out
}

// ReadFile parses the table in the named file.
func ReadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening xvg file: %w", err)
	}
	defer f.Close()
	table, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Read parses a table from r. Errors carry the physical line number of the
// offending row.
func Read(r io.Reader, opts Options) (*Table, error) {
	if opts.SkipRows < 0 {
		return nil, fmt.Errorf("skip row count cannot be negative, got %d", opts.SkipRows)
	}

	table := &Table{}
	width := -1
	toSkip := opts.SkipRows

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@") {
			continue
		}
		if toSkip > 0 {
			toSkip--
			continue
		}

		fields := strings.Fields(line)
		row, err := parseRow(fields, opts.Columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if width == -1 {
			width = len(row)
		} else if len(row) != width {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", lineNo, width, len(row))
		}
		table.Rows = append(table.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading xvg data: %w", err)
	}
	if toSkip > 0 {
		return nil, fmt.Errorf("asked to skip %d rows but table only has %d data rows",
			opts.SkipRows, opts.SkipRows-toSkip)
	}
	return table, nil
}

func parseRow(fields []string, columns []int) ([]float64, error) {
	if columns == nil {
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("column %d: %q is not a number", i, field)
			}
			row[i] = v
		}
		return row, nil
	}

	row := make([]float64, len(columns))
	for i, col := range columns {
		if col < 0 || col >= len(fields) {
			return nil, fmt.Errorf("column %d requested but row has %d fields", col, len(fields))
		}
		v, err := strconv.ParseFloat(fields[col], 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %q is not a number", col, fields[col])
		}
		row[i] = v
	}
	return row, nil
}
