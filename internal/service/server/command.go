package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/async-button/internal/api/grpc/button"
	"github.com/oshokin/async-button/internal/config"
	"github.com/oshokin/async-button/internal/content"
	"github.com/oshokin/async-button/internal/logger"
	"github.com/oshokin/async-button/internal/metrics"
	pb "github.com/oshokin/async-button/internal/pb/v1"
	repository "github.com/oshokin/async-button/internal/repository/state"
	"github.com/oshokin/async-button/internal/scheduler"
)

// Options controls the async-button-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile overrides the fetch state file from the settings.
	StateFile string
	// MetricsAddress overrides the Prometheus listen address from the settings.
	MetricsAddress string
	// ContentURL overrides the content server root from the settings.
	ContentURL string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// readHeaderTimeout bounds slow metrics scrapers.
const readHeaderTimeout = 5 * time.Second

// Run starts the gRPC server and blocks until ctx is canceled or a component fails.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "async-button-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(settings, opts)

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	registry := metrics.NewRegistry()
	loop := scheduler.NewLoop(clockwork.NewRealClock())
	fetcher := content.NewClient(settings.ContentURL, content.WithTimeout(settings.Timeout))

	svc, err := newService(
		ctx,
		loop,
		fetcher,
		repository.NewFileRepository(settings.StateFile),
		settings.Button,
		metrics.NewObserver(registry),
	)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterButtonServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Async button server listening",
		"listen_address", listenAddress,
		"state_file", settings.StateFile,
		"content_url", settings.ContentURL,
		"grace_period", settings.Button.GracePeriod,
		"debounce_period", settings.Button.DebouncePeriod)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return loop.Run(groupCtx)
	})

	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		// Watch streams end once the loop stops, so graceful stop cannot hang on them.
		<-loop.Done()

		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()

		return nil
	})

	if settings.MetricsAddress != "" {
		serveMetrics(groupCtx, group, settings.MetricsAddress, metrics.Handler(registry))
	}

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Async button server stopped")

	return nil
}

// applyOverrides copies non-empty command line values over the settings.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.StateFile != "" {
		settings.StateFile = opts.StateFile
	}

	if opts.MetricsAddress != "" {
		settings.MetricsAddress = opts.MetricsAddress
	}

	if opts.ContentURL != "" {
		settings.ContentURL = opts.ContentURL
	}
}

// serveMetrics exposes handler on address until ctx is done.
func serveMetrics(ctx context.Context, group *errgroup.Group, address string, handler http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	httpServer := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	group.Go(func() error {
		logger.InfoKV(ctx, "Metrics endpoint listening", "metrics_address", address)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve metrics: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), readHeaderTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Port-only address binds on all interfaces.
	return ":" + port, nil
}
