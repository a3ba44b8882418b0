// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"empbridge/cli/internal/bridge"
	"empbridge/cli/internal/bridge/channel"
	"empbridge/cli/internal/bridge/model"
	"empbridge/cli/internal/config"
	"empbridge/cli/internal/keychain"
	"empbridge/cli/internal/logging"
	"empbridge/cli/internal/metrics"
	"empbridge/cli/internal/store"
)

// caller answers method calls, either in-process or over the channel.
type caller interface {
	Call(ctx context.Context, call model.MethodCall) (model.Outcome, error)
}

var (
	callAddr  string
	callLocal bool
	callTLS   bool
)

// addCallerFlags registers the flags selecting where client commands send calls.
func addCallerFlags(c *cobra.Command) {
	c.Flags().StringVar(&callAddr, "addr", "", "Method channel address (defaults to channel.address from config)")
	c.Flags().BoolVar(&callLocal, "local", false, "Run an in-process bridge instead of calling a running server")
	c.Flags().BoolVar(&callTLS, "tls", false, "Use TLS when dialing the method channel")
}

// resolveDSN looks up the DSN from the environment, then the keychain.
func resolveDSN() (string, string, error) {
	var loader config.DSNLoader
	if km, err := keychain.GetManager(); err == nil {
		loader = km
	} else {
		logger.Debug("Keychain unavailable", logger.Args("error", err.Error()))
	}
	return config.ResolveDSN(loader)
}

// newDispatcher wires store and dispatcher from configuration. Metrics are
// registered with reg when it is non-nil.
func newDispatcher(reg prometheus.Registerer) (*bridge.Dispatcher, error) {
	raw, source, err := resolveDSN()
	if err != nil {
		return nil, err
	}
	conn, err := store.NewConnector(raw)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	s := store.New(conn, logger, store.WithMetrics(m))
	d := bridge.New(s, logger,
		bridge.WithMetrics(m),
		bridge.WithStrictUpdate(cfg.StrictUpdate),
		bridge.WithErrorDetails(cfg.ErrorDetails),
		bridge.WithOperationTimeout(timeout),
	)
	logger.Debug("Bridge configured", logger.Args(
		"database", string(conn.DBType()),
		"dsn_source", source,
		"strict_update", cfg.StrictUpdate,
		"operation_timeout", timeout.String(),
	))
	return d, nil
}

// openCaller returns the caller selected by the client flags and a cleanup func.
func openCaller(ctx context.Context) (caller, func(), error) {
	if callLocal {
		d, err := newDispatcher(nil)
		if err != nil {
			return nil, nil, err
		}
		runCtx, cancel := context.WithCancel(ctx)
		go func() { _ = d.Run(runCtx) }()
		return d, func() {
			cancel()
			d.Close()
		}, nil
	}

	addr := callAddr
	if addr == "" {
		addr = cfg.Channel.Address
	}
	client, err := channel.Dial(addr, bridge.Channel, callTLS || cfg.Channel.TLS)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return client, func() { _ = client.Close() }, nil
}

// invoke sends one call through the selected caller. Transport failures are
// presented to the user before being returned.
func invoke(ctx context.Context, call model.MethodCall) (model.Outcome, error) {
	c, closeFn, err := openCaller(ctx)
	if err != nil {
		pterm.Println("❌ " + logging.PresentError("", err))
		return model.Outcome{}, err
	}
	defer closeFn()

	stop := startInlineSpinner(os.Stderr, "calling "+call.Method, spinnerFrames, spinnerInterval)
	out, err := c.Call(ctx, call)
	stop()
	if err != nil {
		if callLocal {
			pterm.Println("❌ " + logging.PresentError(call.Method, err))
		} else {
			logging.PresentChannelError(err)
		}
		return model.Outcome{}, err
	}
	return out, nil
}
