package env_vars

import (
	"context"
	"os"
	"reflect"
	"strings"

	"github.com/vk/mdgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the env_vars runner. A prefix narrows the
// exposed variables, e.g. "GMX" for GROMACS tuning knobs.
type Input struct {
	Prefix string `mdg:"prefix"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// Output defines the data structure returned by the runner.
type Output struct {
	All   map[string]string `cty:"all"`
	Count int               `cty:"count"`
}

// OnRunEnvVars is the handler for the 'env_vars' runner.
func OnRunEnvVars(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 {
			continue
		}
		if input.Prefix != "" && !strings.HasPrefix(pair[0], input.Prefix) {
			continue
		}
		envMap[pair[0]] = pair[1]
	}

	return &Output{All: envMap, Count: len(envMap)}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunEnvVars", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunEnvVars,
	})
}
