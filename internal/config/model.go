package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of everything loaded from disk: the
// module manifests and the user's grid definition.
type Model struct {
	Runners map[string]*RunnerDefinition
	Assets  map[string]*AssetDefinition
	Grid    *Grid
}

// Grid is the user's workflow definition: the set of steps to execute and
// the stateful resources they share.
type Grid struct {
	Steps     []*Step
	Resources []*Resource
}

// Step is one `step` block. Count is the optional fan-out expression; for an
// ensemble run it is the number of members and each expanded instance sees
// its own count.index.
type Step struct {
	RunnerType string
	Name       string
	Count      hcl.Expression
	Arguments  map[string]hcl.Expression
	Uses       map[string]hcl.Expression
	DependsOn  []string
}

// Resource is one `resource` block: a managed instance of an asset type.
type Resource struct {
	AssetType string
	Name      string
	Arguments map[string]hcl.Expression
	DependsOn []string
}

// RunnerDefinition is a runner manifest: the declared contract of a step type.
type RunnerDefinition struct {
	Type        string
	Description string
	Lifecycle   *Lifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
	Uses        map[string]*UsesDefinition
}

// AssetDefinition is an asset manifest: the declared contract of a resource type.
type AssetDefinition struct {
	Type        string
	Description string
	Lifecycle   *AssetLifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
}

// Lifecycle maps a runner's events to Go handler names.
type Lifecycle struct {
	OnRun string
}

// AssetLifecycle maps an asset's create/destroy events to Go handler names.
type AssetLifecycle struct {
	Create  string
	Destroy string
}

// InputDefinition declares one input argument of a runner or asset.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}

// OutputDefinition declares one output value of a runner or asset.
type OutputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
}

// UsesDefinition declares an asset dependency of a runner, bound to a local
// name inside the step's `uses` block.
type UsesDefinition struct {
	LocalName string
	AssetType string
}
