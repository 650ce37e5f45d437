package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	httpAdapter "github.com/aretw0/shape/pkg/adapters/http"
	"github.com/aretw0/shape/pkg/metrics"
	"github.com/aretw0/shape/pkg/registry"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves stored schemas and validation as a JSON API over HTTP, with Prometheus
metrics on /metrics and an OpenAPI description on /openapi.json.

Set SHAPE_STORE_KEY to a base64 AES-256 key to keep schemas encrypted at rest;
SHAPE_STORE_FALLBACK_KEYS lists older keys (comma separated) during rotation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		storeSpec, _ := cmd.Flags().GetString("store")
		cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")
		readOnly, _ := cmd.Flags().GetBool("read-only")

		b, err := openStore(storeSpec, readOnly)
		if err != nil {
			return usageError(err)
		}
		defer b.close()

		handler, err := newAPIHandler(b, cacheTTL)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, srv)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("store", defaultStore, "Schema store: a directory or a redis:// URL")
	serveCmd.Flags().Duration("cache-ttl", 0, "Reload cached schemas after this long (0 caches until changed)")
	serveCmd.Flags().Bool("read-only", false, "Reject schema writes (PUT and DELETE)")
}

// newAPIHandler wires the registry, metrics and HTTP adapter together.
func newAPIHandler(b *backend, cacheTTL time.Duration) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	schemas := b.registry(
		registry.WithMetrics(rec),
		registry.WithCacheTTL(cacheTTL),
	)
	opts := []httpAdapter.Option{
		httpAdapter.WithGatherer(reg),
		httpAdapter.WithLogger(logger),
	}
	if b.ping != nil {
		opts = append(opts, httpAdapter.WithHealthCheck(b.ping))
	}
	return httpAdapter.NewHandler(schemas, opts...), nil
}

// serve runs srv until ctx is canceled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting shape server", "address", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("shape server stopped gracefully")
		return nil
	}
}
