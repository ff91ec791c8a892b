// Package gmx locates the GROMACS launcher binary and invokes its
// subcommands. Argument lists are validated before any process is spawned:
// a missing input file or a non-executable launcher is reported as an error
// without touching the tool.
package gmx
