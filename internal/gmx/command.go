package gmx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// absolutize rewrites the given paths to absolute ones. Grid authors write
// paths relative to the orchestrator's working directory; a subcommand that
// runs in its own WorkDir would otherwise resolve them from there, reading
// different files than validation checked.
func absolutize(paths ...*string) error {
	for _, p := range paths {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolving path %q: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// GromppSpec describes one grompp preprocessing invocation: it combines a
// structure, a topology and simulation parameters into a portable run input
// file.
type GromppSpec struct {
	ParametersFile string // -f, .mdp simulation parameters
	StructureFile  string // -c, .gro coordinates
	TopologyFile   string // -p, .top topology
	OutputFile     string // -o, .tpr run input
	WorkDir        string
}

func (s *GromppSpec) normalize() error {
	if s.WorkDir == "" {
		return nil
	}
	return absolutize(&s.ParametersFile, &s.StructureFile, &s.TopologyFile, &s.OutputFile)
}

func (s *GromppSpec) validate() error {
	if s.ParametersFile == "" || s.StructureFile == "" || s.TopologyFile == "" || s.OutputFile == "" {
		return fmt.Errorf("grompp requires parameters, structure, topology and output files to be set")
	}
	for _, path := range []string{s.ParametersFile, s.StructureFile, s.TopologyFile} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("grompp input: %w", err)
		}
	}
	return nil
}

func (s *GromppSpec) args() []string {
	return []string{
		"grompp",
		"-f", s.ParametersFile,
		"-c", s.StructureFile,
		"-p", s.TopologyFile,
		"-o", s.OutputFile,
	}
}

// MdrunSpec describes one simulation invocation for a single ensemble
// member: its run input file and working directory.
type MdrunSpec struct {
	InputFile   string // -s, .tpr run input
	DefaultName string // -deffnm, base name for all member output files
	Threads     int    // -nt, 0 lets the tool decide
	WorkDir     string
}

func (s *MdrunSpec) normalize() error {
	if s.WorkDir == "" {
		return nil
	}
	return absolutize(&s.InputFile)
}

func (s *MdrunSpec) validate() error {
	if s.InputFile == "" {
		return fmt.Errorf("mdrun requires a run input file")
	}
	if _, err := os.Stat(s.InputFile); err != nil {
		return fmt.Errorf("mdrun input: %w", err)
	}
	if s.Threads < 0 {
		return fmt.Errorf("mdrun thread count cannot be negative, got %d", s.Threads)
	}
	return nil
}

func (s *MdrunSpec) args() []string {
	out := []string{"mdrun", "-s", s.InputFile}
	if s.DefaultName != "" {
		out = append(out, "-deffnm", s.DefaultName)
	}
	if s.Threads > 0 {
		out = append(out, "-nt", strconv.Itoa(s.Threads))
	}
	return out
}

// RamaSpec describes one dihedral-extraction invocation: it reads a
// trajectory against its run input file and writes phi/psi angles as an
// .xvg table.
type RamaSpec struct {
	RunInputFile   string // -s, .tpr
	TrajectoryFile string // -f
	OutputFile     string // -o, .xvg
	WorkDir        string
}

func (s *RamaSpec) normalize() error {
	if s.WorkDir == "" {
		return nil
	}
	return absolutize(&s.RunInputFile, &s.TrajectoryFile, &s.OutputFile)
}

func (s *RamaSpec) validate() error {
	if s.RunInputFile == "" || s.TrajectoryFile == "" || s.OutputFile == "" {
		return fmt.Errorf("rama requires run input, trajectory and output files to be set")
	}
	for _, path := range []string{s.RunInputFile, s.TrajectoryFile} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("rama input: %w", err)
		}
	}
	return nil
}

func (s *RamaSpec) args() []string {
	return []string{
		"rama",
		"-s", s.RunInputFile,
		"-f", s.TrajectoryFile,
		"-o", s.OutputFile,
	}
}
