package gmx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound reports that no matching executable exists on the search path.
var ErrNotFound = errors.New("executable not found")

// launcherNames are the GROMACS launcher binaries, in preference order.
// The thread-MPI build comes first; gmx_mpi is the fallback on clusters
// that only install the MPI-enabled binary.
var launcherNames = []string{"gmx", "gmx_mpi"}

// Executable is a validated GROMACS launcher.
type Executable struct {
	// Path is the absolute or PATH-resolved location of the launcher.
	Path string
	// Name is the launcher's base name, e.g. "gmx" or "gmx_mpi".
	Name string
}

// FindProgram scans the PATH environment variable for a regular file with
// the given name and the execute bit set, returning the first match. It
// never returns a nonexistent or non-executable path.
func FindProgram(name string) (string, error) {
	if name == "" {
		return "", errors.New("program name must not be empty")
	}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			// An empty PATH entry means the current directory.
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrNotFound)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0o111 != 0
}

// Locate finds a GROMACS launcher on PATH, trying each known launcher name
// in preference order.
func Locate() (*Executable, error) {
	for _, name := range launcherNames {
		path, err := FindProgram(name)
		if err == nil {
			return &Executable{Path: path, Name: name}, nil
		}
	}
	return nil, fmt.Errorf("no GROMACS launcher (%s) on PATH: %w",
		strings.Join(launcherNames, ", "), ErrNotFound)
}

// LocateAt validates an explicitly configured launcher path, bypassing the
// PATH search.
func LocateAt(path string) (*Executable, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("gmx launcher %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("gmx launcher %q is not a regular file", path)
	}
	if info.Mode()&0o111 == 0 {
		return nil, fmt.Errorf("gmx launcher %q is not executable", path)
	}
	return &Executable{Path: path, Name: filepath.Base(path)}, nil
}
