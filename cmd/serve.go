// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"empbridge/cli/internal/bridge"
	"empbridge/cli/internal/bridge/channel"
	"empbridge/cli/internal/logging"
)

var (
	serveAddr        string
	serveMetricsAddr string
)

// serveCmd hosts the employees method channel until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the employees method channel",
	Long: `The serve command listens for method calls on the employees channel and answers
them from the configured database. Each call opens its own connection and closes it
before answering.

Metrics are exposed on /metrics at the metrics address unless it is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Channel.Address
		}
		metricsAddr := cfg.Metrics.Address
		if cmd.Flags().Changed("metrics-addr") {
			metricsAddr = serveMetricsAddr
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		d, err := newDispatcher(reg)
		if err != nil {
			pterm.Println("❌ " + logging.PresentError("Cannot start the bridge", err))
			return err
		}

		lis, err := net.Listen("tcp", addr)
		if err != nil {
			d.Close()
			return err
		}

		err = runServer(ctx, d, lis, metricsAddr, reg, logger)
		logger.Info("Bridge stopped")
		return err
	},
}

// runServer serves the channel on lis, and metrics on metricsAddr when non-empty,
// until ctx is done. The dispatcher is closed as soon as ctx is done so in-flight
// calls are cancelled and the graceful stop of the channel can complete.
func runServer(ctx context.Context, d *bridge.Dispatcher, lis net.Listener, metricsAddr string, reg *prometheus.Registry, log *pterm.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	// Run ends when the dispatcher is closed, not when ctx is done, so outcomes keep
	// flowing while the channel drains.
	g.Go(func() error {
		return d.Run(context.Background())
	})

	g.Go(func() error {
		<-gctx.Done()
		d.Close()
		return nil
	})

	srv := channel.NewServer(d, bridge.Channel, log)
	g.Go(func() error {
		return srv.Serve(gctx, lis)
	})

	if metricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, metricsAddr, reg, log)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// serveMetrics exposes reg on /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *pterm.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	log.Info("Metrics listening", log.Args("address", addr))
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address for the method channel (defaults to channel.address)")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Listen address for /metrics; empty disables")
}
