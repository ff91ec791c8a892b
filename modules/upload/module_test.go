package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOnRunUpload_PutsArtifactWithContentType(t *testing.T) {
	var gotMethod, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	source := writeArtifact(t, "ramachandran.svg", "<svg></svg>")
	output, err := OnRunUpload(context.Background(), &Deps{}, &Input{
		SourcePath: source,
		URL:        server.URL,
	})

	require.NoError(t, err)
	require.True(t, output.Success)
	require.Equal(t, "200 OK", output.Status)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Contains(t, gotContentType, "image/svg")
	require.Equal(t, "<svg></svg>", gotBody)
}

func TestOnRunUpload_RejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	source := writeArtifact(t, "rama0.xvg", "-75.0 -45.0\n")
	output, err := OnRunUpload(context.Background(), &Deps{}, &Input{
		SourcePath: source,
		URL:        server.URL,
	})

	require.Nil(t, output)
	require.ErrorContains(t, err, "upload failed with status")
}

func TestOnRunUpload_RejectsMissingSource(t *testing.T) {
	output, err := OnRunUpload(context.Background(), &Deps{}, &Input{
		SourcePath: filepath.Join(t.TempDir(), "absent.svg"),
		URL:        "http://127.0.0.1:0/",
	})

	require.Nil(t, output)
	require.ErrorContains(t, err, "failed to open source file")
}

func TestOnRunUpload_DefaultsToOctetStream(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	source := writeArtifact(t, "member0.trr", "binary")
	_, err := OnRunUpload(context.Background(), &Deps{}, &Input{
		SourcePath: source,
		URL:        server.URL,
	})

	require.NoError(t, err)
	require.Equal(t, "application/octet-stream", gotContentType)
}
