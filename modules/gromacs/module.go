package gromacs

import (
	"context"
	"reflect"

	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/gmx"
	"github.com/vk/mdgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
// LauncherPath carries the CLI's -gmx override into the asset.
type Module struct {
	LauncherPath string
}

// Input defines the arguments for creating a gromacs resource.
type Input struct {
	Path string `mdg:"path"`
}

// CreateGromacs is the 'create' handler for the asset. It locates the
// launcher binary and returns the live *gmx.Executable shared by all
// simulation steps. A grid-level path wins over the CLI override; with
// neither set, PATH is searched for gmx, then gmx_mpi.
func (m *Module) CreateGromacs(ctx context.Context, input *Input) (*gmx.Executable, error) {
	logger := ctxlog.FromContext(ctx).With("asset", "gromacs")

	path := input.Path
	if path == "" {
		path = m.LauncherPath
	}

	var exe *gmx.Executable
	var err error
	if path != "" {
		exe, err = gmx.LocateAt(path)
	} else {
		exe, err = gmx.Locate()
	}
	if err != nil {
		return nil, err
	}

	if version, verr := exe.Version(ctx); verr == nil && version != "" {
		logger.Info("Located GROMACS launcher.", "path", exe.Path, "version", version)
	} else {
		logger.Info("Located GROMACS launcher.", "path", exe.Path)
	}
	return exe, nil
}

// DestroyGromacs is the 'destroy' handler. The launcher holds no live state
// beyond its path, so there is nothing to tear down.
func DestroyGromacs(exe *gmx.Executable) error {
	return nil
}

// Register registers the asset handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAsset("CreateGromacs", &registry.RegisteredAsset{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		CreateFn:  m.CreateGromacs,
	})
	r.RegisterAsset("DestroyGromacs", &registry.RegisteredAsset{
		DestroyFn: DestroyGromacs,
	})
}
