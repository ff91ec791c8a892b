// Package schema declares the HCL shapes of grid files and module manifests.
package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Grid structures ---

// StepArgs captures the raw body of an 'arguments' block; attribute
// expressions are evaluated later, against the step's eval context.
type StepArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// UsesBlock captures the raw body of a 'uses' block.
type UsesBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Step is one `step "<runner>" "<name>"` block in a grid file.
type Step struct {
	RunnerType string         `hcl:"runner_type,label"`
	Name       string         `hcl:"instance_name,label"`
	Count      hcl.Expression `hcl:"count,optional"`
	Arguments  *StepArgs      `hcl:"arguments,block"`
	Uses       *UsesBlock     `hcl:"uses,block"`
	DependsOn  []string       `hcl:"depends_on,optional"`
}

// Resource is one `resource "<asset>" "<name>"` block in a grid file.
type Resource struct {
	AssetType string    `hcl:"asset_type,label"`
	Name      string    `hcl:"instance_name,label"`
	Arguments *StepArgs `hcl:"arguments,block"`
	DependsOn []string  `hcl:"depends_on,optional"`
}

// --- Module manifest structures ---

// Lifecycle maps a runner's on_run event to a registered Go handler name.
type Lifecycle struct {
	OnRun string `hcl:"on_run,optional"`
}

// AssetLifecycle maps an asset's create and destroy events to Go handlers.
type AssetLifecycle struct {
	Create  string `hcl:"create"`
	Destroy string `hcl:"destroy"`
}

// InputDefinition declares one input argument in a manifest.
type InputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     *cty.Value     `hcl:"default,optional"`
}

// OutputDefinition declares one output value in a manifest.
type OutputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
}

// UsesDefinition declares an asset dependency of a runner.
type UsesDefinition struct {
	LocalName string `hcl:"local_name,label"`
	AssetType string `hcl:"asset_type"`
}

// RunnerDefinition is the manifest of a runnable step type.
type RunnerDefinition struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Lifecycle   *Lifecycle          `hcl:"lifecycle,block"`
	Inputs      []*InputDefinition  `hcl:"input,block"`
	Outputs     []*OutputDefinition `hcl:"output,block"`
	Uses        []*UsesDefinition   `hcl:"uses,block"`
}

// AssetDefinition is the manifest of a stateful asset type.
type AssetDefinition struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Lifecycle   *AssetLifecycle     `hcl:"lifecycle,block"`
	Inputs      []*InputDefinition  `hcl:"input,block"`
	Outputs     []*OutputDefinition `hcl:"output,block"`
}

// FileRoot is the union of every top-level block the loader accepts, so that
// manifests and grid blocks may be mixed freely across files.
type FileRoot struct {
	Runners   []*RunnerDefinition `hcl:"runner,block"`
	Assets    []*AssetDefinition  `hcl:"asset,block"`
	Steps     []*Step             `hcl:"step,block"`
	Resources []*Resource         `hcl:"resource,block"`
	Remain    hcl.Body            `hcl:",remain"`
}
