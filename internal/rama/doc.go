// Package rama turns parsed phi/psi dihedral samples into density grids and
// renders them as Ramachandran diagrams, either as an SVG file or as an ANSI
// heatmap for the terminal.
package rama
