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

// TestHclFeatures_OptionalArgumentDefault validates that a manifest default
// fills in an omitted argument and an explicit argument overrides it.
func TestHclFeatures_OptionalArgumentDefault(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "plot" {
			lifecycle { on_run = "OnRunPlot" }
			input "bins" {
				type    = number
				default = 72
			}
			input "sigma" {
				type    = number
				default = 12
			}
		}
	`
	gridHCL := `
		step "plot" "defaulted" {
			arguments {}
		}

		step "plot" "explicit" {
			arguments {
				bins = 24
			}
		}
	`
	files := map[string]string{
		"modules/plot/manifest.hcl": manifestHCL,
		"grid/main.hcl":             gridHCL,
	}

	type plotInput struct {
		Bins  int     `mdg:"bins"`
		Sigma float64 `mdg:"sigma"`
	}

	var mu sync.Mutex
	seen := map[int]float64{}

	mockModule := &testutil.SimpleModule{
		RunnerName: "OnRunPlot",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(plotInput) },
			InputType: reflect.TypeOf(plotInput{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn: func(_ context.Context, _ *struct{}, input *plotInput) (any, error) {
				mu.Lock()
				seen[input.Bins] = input.Sigma
				mu.Unlock()
				return nil, nil
			},
		},
	}

	result := testutil.RunIntegrationTest(t, files, mockModule)

	require.NoError(t, result.Err)
	require.Equal(t, map[int]float64{72: 12, 24: 12}, seen)
}

// TestHclFeatures_ExplicitDependencyOrders validates depends_on ordering
// without any data flow between the steps.
func TestHclFeatures_ExplicitDependencyOrders(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "probe" {
			lifecycle { on_run = "OnRunProbe" }
			input "name" {
				type = string
			}
		}
	`
	gridHCL := `
		step "probe" "first" {
			arguments {
				name = "first"
			}
		}

		step "probe" "second" {
			arguments {
				name = "second"
			}
			depends_on = ["probe.first"]
		}
	`
	files := map[string]string{
		"modules/probe/manifest.hcl": manifestHCL,
		"grid/main.hcl":              gridHCL,
	}

	type probeInput struct {
		Name string `mdg:"name"`
	}

	var mu sync.Mutex
	var order []string

	mockModule := &testutil.SimpleModule{
		RunnerName: "OnRunProbe",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(probeInput) },
			InputType: reflect.TypeOf(probeInput{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn: func(_ context.Context, _ *struct{}, input *probeInput) (any, error) {
				mu.Lock()
				order = append(order, input.Name)
				mu.Unlock()
				return nil, nil
			},
		},
	}

	result := testutil.RunIntegrationTest(t, files, mockModule)

	require.NoError(t, result.Err)
	require.Equal(t, []string{"first", "second"}, order)
}
