package integration_tests

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/mdgridgo/internal/registry"
	"github.com/vk/mdgridgo/internal/testutil"
)

func probeModule() *testutil.SimpleModule {
	return &testutil.SimpleModule{
		RunnerName: "OnRunProbe",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(struct{}) },
			InputType: reflect.TypeOf(struct{}{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn:        func(context.Context, *struct{}, *struct{}) (any, error) { return nil, nil },
		},
	}
}

// TestErrorHandling_InvalidHCL_IsRejected validates that unparseable HCL
// fails at startup.
func TestErrorHandling_InvalidHCL_IsRejected(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"grid/main.hcl": `step "probe" "A" { arguments {`,
	}

	result := testutil.RunIntegrationTest(t, files, probeModule())

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "application startup panicked")
}

// TestErrorHandling_RequiredArgumentMissing validates that omitting a
// manifest input with no default fails the step.
func TestErrorHandling_RequiredArgumentMissing(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "probe" {
			lifecycle { on_run = "OnRunProbe" }
			input "path" {
				type = string
			}
		}
	`
	gridHCL := `
		step "probe" "A" {
			arguments {}
		}
	`
	files := map[string]string{
		"modules/probe/manifest.hcl": manifestHCL,
		"grid/main.hcl":              gridHCL,
	}

	type probeInput struct {
		Path string `mdg:"path"`
	}
	module := &testutil.SimpleModule{
		RunnerName: "OnRunProbe",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(probeInput) },
			InputType: reflect.TypeOf(probeInput{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn:        func(context.Context, *struct{}, *probeInput) (any, error) { return nil, nil },
		},
	}

	result := testutil.RunIntegrationTest(t, files, module)

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), `missing required argument "path"`)
}

// TestErrorHandling_UndeclaredOutputReference validates that referencing an
// output the manifest does not declare fails at graph build time.
func TestErrorHandling_UndeclaredOutputReference(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "probe" {
			lifecycle { on_run = "OnRunProbe" }
			output "path" {
				type = string
			}
		}

		runner "sink" {
			lifecycle { on_run = "OnRunSink" }
			input "v" {
				type = any
			}
		}
	`
	gridHCL := `
		step "probe" "A" {
			arguments {}
		}

		step "sink" "B" {
			arguments {
				v = step.probe.A.output.nonexistent
			}
		}
	`
	files := map[string]string{
		"modules/probe/manifest.hcl": manifestHCL,
		"grid/main.hcl":              gridHCL,
	}

	type sinkInput struct {
		V string `mdg:"v"`
	}
	sink := &testutil.SimpleModule{
		RunnerName: "OnRunSink",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(sinkInput) },
			InputType: reflect.TypeOf(sinkInput{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn:        func(context.Context, *struct{}, *sinkInput) (any, error) { return nil, nil },
		},
	}

	result := testutil.RunIntegrationTest(t, files, probeModule(), sink)

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), `undeclared output "nonexistent"`)
}

// TestErrorHandling_DependencyCycle validates that circular depends_on
// entries are rejected before execution.
func TestErrorHandling_DependencyCycle(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "probe" {
			lifecycle { on_run = "OnRunProbe" }
		}
	`
	gridHCL := `
		step "probe" "A" {
			arguments {}
			depends_on = ["probe.B"]
		}

		step "probe" "B" {
			arguments {}
			depends_on = ["probe.A"]
		}
	`
	files := map[string]string{
		"modules/probe/manifest.hcl": manifestHCL,
		"grid/main.hcl":              gridHCL,
	}

	result := testutil.RunIntegrationTest(t, files, probeModule())

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "cycle detected")
}

// TestErrorHandling_UnreferencedHandler_IsRejected validates the reverse
// parity direction: a compiled handler no manifest references fails
// registry validation at startup.
func TestErrorHandling_UnreferencedHandler_IsRejected(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "probe" {
			lifecycle { on_run = "OnRunProbe" }
		}
	`
	files := map[string]string{
		"modules/probe/manifest.hcl": manifestHCL,
		"grid/main.hcl": `
			step "probe" "A" {
				arguments {}
			}
		`,
	}

	orphan := &testutil.SimpleModule{
		RunnerName: "OnRunOrphan",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(struct{}) },
			InputType: reflect.TypeOf(struct{}{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn:        func(context.Context, *struct{}, *struct{}) (any, error) { return nil, nil },
		},
	}

	result := testutil.RunIntegrationTest(t, files, probeModule(), orphan)

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), `handler "OnRunOrphan" is registered but no manifest references it`)
}

// TestErrorHandling_ManifestHandlerParity validates that a manifest whose
// handler is not compiled in fails registry validation at startup.
func TestErrorHandling_ManifestHandlerParity(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "ghost" {
			lifecycle { on_run = "OnRunGhost" }
		}
	`
	files := map[string]string{
		"modules/ghost/manifest.hcl": manifestHCL,
		"grid/main.hcl": `
			step "ghost" "A" {
				arguments {}
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files, probeModule())

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), `handler "OnRunGhost" is not registered`)
}
