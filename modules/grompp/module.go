package grompp

import (
	"context"
	"reflect"

	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/gmx"
	"github.com/vk/mdgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the grompp runner.
type Input struct {
	Parameters string `mdg:"parameters"`
	Structure  string `mdg:"structure"`
	Topology   string `mdg:"topology"`
	Output     string `mdg:"output"`
	WorkDir    string `mdg:"work_dir"`
}

// Output defines the data structure returned by the runner.
type Output struct {
	RunInputFile string `cty:"run_input_file"`
}

// Deps declares the resources this runner needs.
type Deps struct {
	GMX *gmx.Executable `mdg:"gmx"`
}

// OnRunGrompp is the handler for the 'grompp' runner's on_run lifecycle
// event. It preprocesses one structure into a portable run input file.
func OnRunGrompp(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "grompp", "structure", input.Structure)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	spec := &gmx.GromppSpec{
		ParametersFile: input.Parameters,
		StructureFile:  input.Structure,
		TopologyFile:   input.Topology,
		OutputFile:     input.Output,
		WorkDir:        input.WorkDir,
	}
	if err := deps.GMX.Grompp(ctx, spec); err != nil {
		return nil, err
	}

	logger.Info("Preprocessing complete.", "runInput", input.Output)
	return &Output{RunInputFile: input.Output}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunGrompp", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunGrompp,
	})
}
