package socketio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOnRunSocketIO_RejectsUnparsableURL(t *testing.T) {
	output, err := OnRunSocketIO(context.Background(), &Deps{}, &Input{
		URL:       "://missing-scheme",
		Namespace: "/",
		Timeout:   "1s",
	})

	require.Nil(t, output)
	require.ErrorContains(t, err, "failed to parse URL")
}

func TestOnRunSocketIO_TimesOutWhenEndpointUnreachable(t *testing.T) {
	start := time.Now()
	output, err := OnRunSocketIO(context.Background(), &Deps{}, &Input{
		// Port 1 is reserved; nothing answers there.
		URL:       "http://127.0.0.1:1/socket.io",
		Namespace: "/",
		OnEvent:   "ack",
		Timeout:   "500ms",
	})

	require.Nil(t, output)
	require.Error(t, err)
	require.Less(t, time.Since(start), 10*time.Second, "the configured timeout should bound the wait")
}

func TestOnRunSocketIO_CancelledContextStopsTheWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	output, err := OnRunSocketIO(ctx, &Deps{}, &Input{
		URL:       "http://127.0.0.1:1/socket.io",
		Namespace: "/",
		OnEvent:   "ack",
		Timeout:   "30s",
	})

	require.Nil(t, output)
	require.Error(t, err)
}
