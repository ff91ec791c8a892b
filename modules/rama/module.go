package rama

import (
	"context"
	"reflect"

	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/gmx"
	"github.com/vk/mdgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the rama runner.
type Input struct {
	RunInput   string `mdg:"run_input"`
	Trajectory string `mdg:"trajectory"`
	Output     string `mdg:"output"`
	WorkDir    string `mdg:"work_dir"`
}

// Output defines the data structure returned by the runner.
type Output struct {
	XvgFile string `cty:"xvg_file"`
}

// Deps declares the resources this runner needs.
type Deps struct {
	GMX *gmx.Executable `mdg:"gmx"`
}

// OnRunRama is the handler for the 'rama' runner's on_run lifecycle event.
// It extracts backbone dihedral angles from a trajectory into an .xvg table.
// All inputs are validated before the tool is invoked.
func OnRunRama(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "rama", "trajectory", input.Trajectory)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	spec := &gmx.RamaSpec{
		RunInputFile:   input.RunInput,
		TrajectoryFile: input.Trajectory,
		OutputFile:     input.Output,
		WorkDir:        input.WorkDir,
	}
	if err := deps.GMX.Rama(ctx, spec); err != nil {
		return nil, err
	}

	logger.Info("Dihedral extraction complete.", "xvg", input.Output)
	return &Output{XvgFile: input.Output}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunRama", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunRama,
	})
}
