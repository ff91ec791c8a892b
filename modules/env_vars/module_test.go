package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnRunEnvVars_FiltersByPrefix(t *testing.T) {
	t.Setenv("MDGTEST_ALPHA", "1")
	t.Setenv("MDGTEST_BETA", "2")
	t.Setenv("OTHERTEST_GAMMA", "3")

	output, err := OnRunEnvVars(context.Background(), &Deps{}, &Input{Prefix: "MDGTEST_"})

	require.NoError(t, err)
	require.Equal(t, map[string]string{"MDGTEST_ALPHA": "1", "MDGTEST_BETA": "2"}, output.All)
	require.Equal(t, 2, output.Count)
}

func TestOnRunEnvVars_NoPrefixExposesEverything(t *testing.T) {
	t.Setenv("MDGTEST_ALPHA", "1")

	output, err := OnRunEnvVars(context.Background(), &Deps{}, &Input{})

	require.NoError(t, err)
	require.Equal(t, "1", output.All["MDGTEST_ALPHA"])
	require.Equal(t, len(output.All), output.Count)
	require.Greater(t, output.Count, 1)
}
