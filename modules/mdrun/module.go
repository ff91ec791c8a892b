package mdrun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/gmx"
	"github.com/vk/mdgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the mdrun runner. In an ensemble grid the
// step is fanned out with count and each member selects its own run input
// via count.index.
type Input struct {
	RunInput    string `mdg:"run_input"`
	DefaultName string `mdg:"default_name"`
	Threads     int    `mdg:"threads"`
	WorkDir     string `mdg:"work_dir"`
}

// Output defines the data structure returned by the runner.
type Output struct {
	Trajectory   string `cty:"trajectory"`
	RunInputFile string `cty:"run_input_file"`
}

// Deps declares the resources this runner needs.
type Deps struct {
	GMX *gmx.Executable `mdg:"gmx"`
}

// OnRunMdrun is the handler for the 'mdrun' runner's on_run lifecycle event.
func OnRunMdrun(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "mdrun", "runInput", input.RunInput)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	if input.WorkDir != "" {
		if err := os.MkdirAll(input.WorkDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating member working directory: %w", err)
		}
	}

	spec := &gmx.MdrunSpec{
		InputFile:   input.RunInput,
		DefaultName: input.DefaultName,
		Threads:     input.Threads,
		WorkDir:     input.WorkDir,
	}
	if err := deps.GMX.Mdrun(ctx, spec); err != nil {
		return nil, err
	}

	// The tool names the trajectory after -deffnm when given, traj.trr
	// otherwise.
	trajName := "traj.trr"
	if input.DefaultName != "" {
		trajName = input.DefaultName + ".trr"
	}
	trajectory := trajName
	if input.WorkDir != "" {
		trajectory = filepath.Join(input.WorkDir, trajName)
	}

	logger.Info("Simulation finished.", "trajectory", trajectory)
	return &Output{Trajectory: trajectory, RunInputFile: input.RunInput}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunMdrun", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunMdrun,
	})
}
