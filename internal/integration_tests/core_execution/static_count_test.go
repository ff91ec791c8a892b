package integration_tests

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/mdgridgo/internal/registry"
	"github.com/vk/mdgridgo/internal/testutil"
)

// TestCoreExecution_Count_Static validates that a step with a static `count`
// meta-argument is expanded into N distinct nodes and all are executed.
func TestCoreExecution_Count_Static(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "probe" {
			lifecycle { on_run = "OnRunProbe" }
		}
	`
	gridHCL := `
		step "probe" "A" {
			count = 3
			arguments {}
		}
	`
	files := map[string]string{
		"modules/probe/manifest.hcl": manifestHCL,
		"grid/main.hcl":              gridHCL,
	}

	mockModule := &testutil.SimpleModule{
		RunnerName: "OnRunProbe",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(struct{}) },
			InputType: reflect.TypeOf(struct{}{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn:        func(context.Context, *struct{}, *struct{}) (any, error) { return nil, nil },
		},
	}

	result := testutil.RunIntegrationTest(t, files, mockModule)

	require.NoError(t, result.Err, "app.Run() returned an unexpected error")
	testutil.AssertStepInstanceRan(t, result, "probe", "A", 0)
	testutil.AssertStepInstanceRan(t, result, "probe", "A", 1)
	testutil.AssertStepInstanceRan(t, result, "probe", "A", 2)
}

// TestCoreExecution_CountIndex_Injection validates that each expanded
// instance evaluates count.index to its own rank.
func TestCoreExecution_CountIndex_Injection(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "probe" {
			lifecycle { on_run = "OnRunProbe" }
			input "member" {
				type = number
			}
		}
	`
	gridHCL := `
		step "probe" "A" {
			count = 3
			arguments {
				member = count.index
			}
		}
	`
	files := map[string]string{
		"modules/probe/manifest.hcl": manifestHCL,
		"grid/main.hcl":              gridHCL,
	}

	type probeInput struct {
		Member int `mdg:"member"`
	}

	var mu sync.Mutex
	seen := map[int]bool{}

	mockModule := &testutil.SimpleModule{
		RunnerName: "OnRunProbe",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(probeInput) },
			InputType: reflect.TypeOf(probeInput{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn: func(_ context.Context, _ *struct{}, input *probeInput) (any, error) {
				mu.Lock()
				seen[input.Member] = true
				mu.Unlock()
				return nil, nil
			},
		},
	}

	result := testutil.RunIntegrationTest(t, files, mockModule)

	require.NoError(t, result.Err)
	require.Equal(t, map[int]bool{0: true, 1: true, 2: true}, seen)
}
