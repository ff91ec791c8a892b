package integration_tests

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/mdgridgo/internal/registry"
	"github.com/vk/mdgridgo/internal/testutil"
)

// TestErrorHandling_FailingStep_TriggersFailFast validates that a handler
// error fails the run with the injected root cause and that no dependent
// step is executed.
func TestErrorHandling_FailingStep_TriggersFailFast(t *testing.T) {
	t.Parallel()

	manifestHCL := `
		runner "failer" {
			lifecycle { on_run = "OnRunFailer" }
		}

		runner "spy" {
			lifecycle { on_run = "OnRunSpy" }
		}
	`
	gridHCL := `
		step "failer" "A" {
			arguments {}
		}

		step "spy" "B" {
			arguments {}
			depends_on = ["failer.A"]
		}
	`
	files := map[string]string{
		"modules/failer/manifest.hcl": manifestHCL,
		"grid/main.hcl":               gridHCL,
	}

	expectedErr := errors.New("handler failed as expected")
	var wasSpyExecuted atomic.Bool

	failer := &testutil.SimpleModule{
		RunnerName: "OnRunFailer",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(struct{}) },
			InputType: reflect.TypeOf(struct{}{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn: func(context.Context, *struct{}, *struct{}) (any, error) {
				return nil, expectedErr
			},
		},
	}
	spy := &testutil.SimpleModule{
		RunnerName: "OnRunSpy",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(struct{}) },
			InputType: reflect.TypeOf(struct{}{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn: func(context.Context, *struct{}, *struct{}) (any, error) {
				wasSpyExecuted.Store(true)
				return nil, nil
			},
		},
	}

	result := testutil.RunIntegrationTest(t, files, failer, spy)

	require.Error(t, result.Err)
	require.ErrorIs(t, result.Err, expectedErr, "the error chain should carry the injected root cause")
	require.False(t, wasSpyExecuted.Load(), "a dependent of the failing step must not run")
}
