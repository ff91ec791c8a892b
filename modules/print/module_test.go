package print

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/mdgridgo/internal/ctxlog"
)

func loggerContext(buf *bytes.Buffer) context.Context {
	logger := slog.New(slog.NewTextHandler(buf, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestOnRunPrint_WritesSortedEntriesToRunLogger(t *testing.T) {
	var buf bytes.Buffer

	_, err := OnRunPrint(loggerContext(&buf), &Deps{}, &Input{
		Value: map[string]string{
			"peak":    "0.0123",
			"diagram": "ramachandran.svg",
		},
	})

	require.NoError(t, err)
	logs := buf.String()
	require.Contains(t, logs, "diagram")
	require.Contains(t, logs, "ramachandran.svg")
	require.Contains(t, logs, "peak")
	require.Less(t, strings.Index(logs, "diagram"), strings.Index(logs, "peak"),
		"entries should be logged in sorted key order")
}

func TestOnRunPrint_HandlesEmptyInput(t *testing.T) {
	var buf bytes.Buffer

	_, err := OnRunPrint(loggerContext(&buf), &Deps{}, &Input{})

	require.NoError(t, err)
	require.Contains(t, buf.String(), "Nothing to print")
}
