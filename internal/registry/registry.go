package registry

import (
	"github.com/vk/mdgridgo/internal/config"
)

// Module is implemented by every compiled-in module so the app can register
// its handlers in one pass.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered handlers and loaded definitions for a single
// application instance. It is populated once at startup and read-only during
// execution.
type Registry struct {
	HandlerRegistry         map[string]*RegisteredRunner
	AssetHandlerRegistry    map[string]*RegisteredAsset
	DefinitionRegistry      map[string]*config.RunnerDefinition
	AssetDefinitionRegistry map[string]*config.AssetDefinition
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		HandlerRegistry:         make(map[string]*RegisteredRunner),
		AssetHandlerRegistry:    make(map[string]*RegisteredAsset),
		DefinitionRegistry:      make(map[string]*config.RunnerDefinition),
		AssetDefinitionRegistry: make(map[string]*config.AssetDefinition),
	}
}

// PopulateDefinitionsFromModel copies the loaded manifest definitions into
// the registry for lookup during execution.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for key, val := range model.Runners {
		r.DefinitionRegistry[key] = val
	}
	for key, val := range model.Assets {
		r.AssetDefinitionRegistry[key] = val
	}
}
