package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	parallel "github.com/Swind/go-parallel"
	"github.com/Swind/go-parallel/core"
	promexport "github.com/Swind/go-parallel/observability/prometheus"
	"github.com/Swind/go-parallel/observability/zaplog"
)

// operation runs one façade call and returns the line to print.
type operation func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int) (string, error)

// session holds what one command invocation needs: logger, metrics and the façade.
type session struct {
	logger   *zaplog.Logger
	registry *prom.Registry
	poller   *promexport.SnapshotPoller
	ip       *parallel.IterativeParallelism
	pool     *parallel.WorkerPool
	threads  int
}

func newSession(c *cli.Context) (*session, error) {
	logger, err := zaplog.NewProduction(c.String(flagLogLevel))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	registry := prom.NewRegistry()
	exporter, err := promexport.NewMetricsExporter("", registry, promexport.ExporterOptions{})
	if err != nil {
		return nil, err
	}
	poller, err := promexport.NewSnapshotPoller(registry, time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &core.WorkerPoolConfig{
		Metrics:             exporter,
		Logger:              logger,
		RejectedTaskHandler: &core.LoggingRejectedTaskHandler{Logger: logger},
	}

	s := &session{
		logger:   logger,
		registry: registry,
		poller:   poller,
		threads:  c.Int(flagThreads),
	}

	if c.Bool(flagShared) {
		pool, err := parallel.NewWorkerPoolWithConfig("parmap", s.threads, cfg)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		s.ip = parallel.NewSharedIterativeParallelism(pool)
		s.ip.SetLogger(logger)
		poller.AddPool(pool.ID(), pool)
	} else {
		s.ip = parallel.NewIterativeParallelismWithConfig(cfg)
	}
	s.ip.SetName(c.Command.Name)
	poller.AddFacade(s.ip.Name(), s.ip)
	return s, nil
}

func (s *session) close() {
	if s.pool != nil {
		s.pool.Close()
		s.pool.Join()
	}
	_ = s.logger.Sync()
}

// runOperation reads the input, runs op and prints its result. When a
// metrics address is configured the /metrics endpoint is served for the
// lifetime of the operation.
func runOperation(c *cli.Context, op operation) error {
	values, err := readValues(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	s, err := newSession(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer s.close()

	s.logger.Debug("running operation",
		core.F("command", c.Command.Name),
		core.F("threads", s.threads),
		core.F("values", len(values)),
		core.F("shared", s.pool != nil),
	)

	g, ctx := errgroup.WithContext(c.Context)

	var srv *http.Server
	if addr := c.String(flagMetricsAddr); addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return cli.Exit(fmt.Sprintf("metrics listener: %v", err), 1)
		}
		srv = &http.Server{
			Handler:           metricsMux(s.registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		s.logger.Info("serving metrics", core.F("addr", ln.Addr().String()))
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	s.poller.Start(ctx)

	var out string
	g.Go(func() error {
		defer s.poller.Stop()
		if srv != nil {
			defer srv.Shutdown(context.Background())
		}

		var err error
		out, err = op(ctx, s.ip, s.threads, values)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("operation failed", core.F("command", c.Command.Name), core.F("err", err))
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintln(c.App.Writer, out)
	return nil
}

func metricsMux(reg *prom.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}
