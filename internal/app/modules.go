package app

import (
	"github.com/vk/mdgridgo/internal/registry"
	"github.com/vk/mdgridgo/modules/env_vars"
	"github.com/vk/mdgridgo/modules/gromacs"
	"github.com/vk/mdgridgo/modules/grompp"
	"github.com/vk/mdgridgo/modules/mdrun"
	"github.com/vk/mdgridgo/modules/print"
	"github.com/vk/mdgridgo/modules/rama"
	"github.com/vk/mdgridgo/modules/rama_plot"
	"github.com/vk/mdgridgo/modules/socketio"
	"github.com/vk/mdgridgo/modules/upload"
	"github.com/vk/mdgridgo/modules/xvg_read"
)

// coreModules is the definitive list of all modules compiled into the
// mdgridgo binary. The gromacs asset receives the CLI's launcher override.
func coreModules(cfg *Config) []registry.Module {
	return []registry.Module{
		&gromacs.Module{LauncherPath: cfg.GmxPath},
		&grompp.Module{},
		&mdrun.Module{},
		&rama.Module{},
		&xvg_read.Module{},
		&rama_plot.Module{},
		&print.Module{},
		&env_vars.Module{},
		&socketio.Module{},
		&upload.Module{},
	}
}
