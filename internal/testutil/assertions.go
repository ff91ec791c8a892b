package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertStepRan checks the log output within a HarnessResult to confirm that
// a specific step instance has executed. It abstracts the underlying node ID
// format, making tests more resilient to internal refactoring.
func AssertStepRan(t *testing.T, result *HarnessResult, runnerType, stepName string) {
	t.Helper()
	AssertStepInstanceRan(t, result, runnerType, stepName, 0)
}

// AssertStepInstanceRan checks that one instance of a fanned-out step executed.
func AssertStepInstanceRan(t *testing.T, result *HarnessResult, runnerType, stepName string, index int) {
	t.Helper()

	expected := fmt.Sprintf("nodeID=step.%s.%s[%d]", runnerType, stepName, index)
	require.True(t,
		strings.Contains(result.LogOutput, expected),
		"expected log output for step '%s.%s[%d]' was not found in logs", runnerType, stepName, index,
	)
}
