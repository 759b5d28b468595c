package profiler

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whimsicalfrog/frogshop/internal/metrics"
)

func startServer(t *testing.T, m *metrics.Manager) *Server {
	t.Helper()
	server := New("127.0.0.1:0", m.Handler(), zerolog.Nop())
	require.NoError(t, server.Start(context.Background()), "Start() error")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})
	return server
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := New("127.0.0.1:0", nil, zerolog.Nop())
	require.NoError(t, server.Start(context.Background()))
	assert.NotEmpty(t, server.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(ctx))
}

func TestServer_Addr_before_start(t *testing.T) {
	assert.Empty(t, New(":0", nil, zerolog.Nop()).Addr())
}

func TestServer_metrics(t *testing.T) {
	m := metrics.NewManager()
	m.NotificationShown("success")
	server := startServer(t, m)

	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "frogshop_notify_shown_total")
}

func TestServer_PprofEndpoints(t *testing.T) {
	server := startServer(t, metrics.NewManager())
	baseURL := "http://" + server.Addr()

	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "health", endpoint: "/healthz"},
		{name: "index", endpoint: "/debug/pprof/"},
		{name: "cmdline", endpoint: "/debug/pprof/cmdline"},
		{name: "symbol", endpoint: "/debug/pprof/symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(baseURL + tt.endpoint)
			require.NoError(t, err, "GET %s error", tt.endpoint)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestServer_Start_bind_error(t *testing.T) {
	first := startServer(t, metrics.NewManager())

	err := New(first.Addr(), nil, zerolog.Nop()).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}
