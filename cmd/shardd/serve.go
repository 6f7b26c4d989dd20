package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/YosefMac/Xapiand"
	"github.com/YosefMac/Xapiand/engine"
	"github.com/YosefMac/Xapiand/engine/local"
	"github.com/YosefMac/Xapiand/engine/remote"
	"github.com/YosefMac/Xapiand/metrics/prom"
)

const shutdownTimeout = 10 * time.Second

type serveConfig struct {
	Path        string
	Listen      string
	Writable    bool
	Compression string
	LockTimeout time.Duration
	SyncOnWrite bool
	Metrics     bool
}

func newServeCommand(stdout, stderr io.Writer) *cobra.Command {
	cfg := serveConfig{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local shard over HTTP. The shard is created if missing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, stderr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			l, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return err
			}
			return serve(ctx, l, cfg, logger.Logger)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&cfg.Path, "path", "", "Shard directory.")
	flags.StringVar(&cfg.Listen, "listen", ":8890", "Address to listen on.")
	flags.BoolVar(&cfg.Writable, "writable", false, "Accept writes.")
	flags.StringVar(&cfg.Compression, "compression", "none", "Payload compression: none, lz4 or zstd.")
	flags.DurationVar(&cfg.LockTimeout, "lock-timeout", time.Second, "How long to wait for the shard's file lock.")
	flags.BoolVar(&cfg.SyncOnWrite, "sync-on-write", false, "Make every write durable without waiting for commit.")
	flags.BoolVar(&cfg.Metrics, "metrics", true, "Expose Prometheus metrics at /metrics.")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

// serve runs the shard server on l until ctx is done. l is closed on return.
func serve(ctx context.Context, l net.Listener, cfg serveConfig, logger *slog.Logger) error {
	opts, err := engineOptions(cfg)
	if err != nil {
		_ = l.Close()
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pool := xapiand.NewPool(
		xapiand.WithLogger(&xapiand.Logger{Logger: logger}),
		xapiand.WithLocalOptions(opts...),
		xapiand.WithMetricsCollector(prom.New(reg)),
	)
	defer pool.Close()

	c, err := pool.Database(ctx, xapiand.EndpointSet{xapiand.LocalEndpoint(cfg.Path)}, cfg.Writable)
	if err != nil {
		_ = l.Close()
		return err
	}
	db := c.Handle(0)

	srv := &http.Server{
		Handler:           newRouter(db, cfg, reg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(l) }()
	logger.LogAttrs(ctx, slog.LevelInfo, "serving shard",
		slog.String("path", cfg.Path),
		slog.String("listen", l.Addr().String()),
		slog.Bool("writable", cfg.Writable),
	)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.LogAttrs(shutdownCtx, slog.LevelInfo, "shutting down", slog.String("path", cfg.Path))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if w, ok := db.(engine.WritableDatabase); ok {
		return w.Commit(shutdownCtx)
	}
	return nil
}

func engineOptions(cfg serveConfig) ([]local.Option, error) {
	c, err := local.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}
	opts := []local.Option{
		local.WithCompression(c),
		local.WithLockTimeout(cfg.LockTimeout),
	}
	if cfg.SyncOnWrite {
		opts = append(opts, local.WithSyncOnWrite())
	}
	return opts, nil
}

func newRouter(db engine.Database, cfg serveConfig, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()
	if cfg.Metrics {
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	router.PathPrefix("/").Handler(remote.NewHandler(db, logger))
	return router
}
