package integration

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/async-button/internal/config"
	domain "github.com/oshokin/async-button/internal/domain/button"
	"github.com/oshokin/async-button/internal/service/server"
)

// testButton keeps cycles short: loading shows after 200ms, settle needs 50ms of quiet.
var testButton = domain.Config{
	Label:          "Fetch",
	GracePeriod:    200 * time.Millisecond,
	DebouncePeriod: 50 * time.Millisecond,
}

// reservePort returns a free local address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startContent serves the two-step content API; the second step answers after delay.
func startContent(t *testing.T, code uuid.UUID, delay time.Duration) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	var srv *httptest.Server

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"next_path": %q}`, srv.URL+"/response_code")
	})
	mux.HandleFunc("/response_code", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(delay)
		_, _ = fmt.Fprintf(w, `{"path": "/response_code", "response_code": %q}`, code)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

// writeSettings saves a settings file pointing at addr and contentURL.
func writeSettings(t *testing.T, settings *config.Config) string {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, settings))

	return cfgPath
}

// startServer runs the real server until the returned stop function is called.
func startServer(t *testing.T, settings *config.Config) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	options := &server.Options{
		ConfigPath: writeSettings(t, settings),
	}

	go func() {
		done <- server.Run(ctx, options)
	}()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", settings.ServerAddress, 50*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 5*time.Second, 20*time.Millisecond)

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}
