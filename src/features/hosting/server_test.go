package hosting

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/contre95/sigwatch/src/features/metrics"
	"github.com/stretchr/testify/require"
)

func TestServer_ServesHealthAndMetrics(t *testing.T) {
	m := metrics.New()
	m.IncCommandRun()

	srv := newServer("127.0.0.1:0", m)
	require.NoError(t, srv.Listen())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	t.Cleanup(func() {
		require.NoError(t, srv.Shutdown())
		<-done
	})

	base := "http://" + srv.Addr().String()
	client := &http.Client{Timeout: 2 * time.Second}

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = client.Get(base + "/health")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, "OK", string(body))

	resp, err := client.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Contains(t, string(body), "sigwatch_command_runs_total 1")
}

func TestServer_ListenFailsOnBusyPort(t *testing.T) {
	first := newServer("127.0.0.1:0", metrics.New())
	require.NoError(t, first.Listen())
	defer first.listener.Close()

	second := newServer(first.Addr().String(), metrics.New())
	require.Error(t, second.Listen())
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_StartupHiddenAtInfoLevel(t *testing.T) {
	logs := &lockedBuffer{}
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	srv := newServer("127.0.0.1:0", metrics.New())
	require.NoError(t, srv.Listen())
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	t.Cleanup(func() {
		require.NoError(t, srv.Shutdown())
		<-done
	})

	client := &http.Client{Timeout: 2 * time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + srv.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)
	require.NotContains(t, logs.String(), "Metrics server listening")
}
