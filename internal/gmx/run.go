package gmx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/vk/mdgridgo/internal/ctxlog"
)

// Grompp validates the spec and runs the preprocessor.
func (e *Executable) Grompp(ctx context.Context, spec *GromppSpec) error {
	if err := spec.normalize(); err != nil {
		return err
	}
	if err := spec.validate(); err != nil {
		return err
	}
	return e.run(ctx, spec.WorkDir, spec.args())
}

// Mdrun validates the spec and runs the simulation for one ensemble member.
func (e *Executable) Mdrun(ctx context.Context, spec *MdrunSpec) error {
	if err := spec.normalize(); err != nil {
		return err
	}
	if err := spec.validate(); err != nil {
		return err
	}
	return e.run(ctx, spec.WorkDir, spec.args())
}

// Rama validates the spec and runs the dihedral extraction.
func (e *Executable) Rama(ctx context.Context, spec *RamaSpec) error {
	if err := spec.normalize(); err != nil {
		return err
	}
	if err := spec.validate(); err != nil {
		return err
	}
	return e.run(ctx, spec.WorkDir, spec.args())
}

// Version runs `<launcher> --version` and returns the reported GROMACS
// version string, or the first output line when no version header is found.
func (e *Executable) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, e.Path, "--version")
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("probing %s version: %w", e.Name, err)
	}
	lines := strings.Split(buf.String(), "\n")
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "GROMACS version:"); ok {
			return strings.TrimSpace(rest), nil
		}
	}
	if len(lines) > 0 {
		return strings.TrimSpace(lines[0]), nil
	}
	return "", nil
}

// run spawns one subcommand and streams its output into the logger line by
// line. The context cancels the process.
func (e *Executable) run(ctx context.Context, workDir string, args []string) error {
	logger := ctxlog.FromContext(ctx).With("launcher", e.Name, "subcommand", args[0])

	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Dir = workDir

	stdout := newLogWriter(logger, slog.LevelDebug, "stdout")
	stderr := newLogWriter(logger, slog.LevelDebug, "stderr")
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Debug("Invoking launcher.", "args", args, "workDir", workDir)
	err := cmd.Run()
	stdout.Flush()
	stderr.Flush()

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("gmx %s interrupted: %w", args[0], ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("gmx %s exited with code %d", args[0], exitErr.ExitCode())
		}
		return fmt.Errorf("running gmx %s: %w", args[0], err)
	}
	return nil
}

// logWriter forwards subprocess output to a slog.Logger one line at a time.
type logWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	logger *slog.Logger
	level  slog.Level
	stream string
}

func newLogWriter(logger *slog.Logger, level slog.Level, stream string) *logWriter {
	return &logWriter{logger: logger, level: level, stream: stream}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line; keep it buffered until more arrives or Flush.
			w.buf.WriteString(line)
			break
		}
		w.emit(strings.TrimRight(line, "\n"))
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *logWriter) emit(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	w.logger.Log(context.Background(), w.level, line, "stream", w.stream)
}
