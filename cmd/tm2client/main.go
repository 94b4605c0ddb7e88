// Command tm2client queries a Tendermint2 node and submits transactions to it.
//
// Usage:
//
//	tm2client status
//	tm2client block 42 --output json
//	tm2client --transport ws --rpc-url ws://127.0.0.1:26657/websocket balance g1...
//	tm2client wait-tx <base64-hash> --from-height 100
//
// Settings are read from TM2_* environment variables and from a .env file in
// TM2CLIENT_CONFIG_DIR_PATH; flags take precedence.
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gnolang/tm2-go-client/pkg/log"
	"github.com/gnolang/tm2-go-client/pkg/provider"
	"github.com/gnolang/tm2-go-client/pkg/rpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

// app carries the state shared by all commands for one invocation.
type app struct {
	cfg     *Config
	lg      log.Logger
	out     *printer
	metrics *rpc.Metrics

	rpcURL    string
	transport string
	output    string

	provider      provider.Provider
	closeProvider func() error
	metricsServer *http.Server

	// newProvider is replaced in tests.
	newProvider func(ctx context.Context) (provider.Provider, func() error, error)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tm2client",
		Short:         "Query and transact with a Tendermint2 node",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.rpcURL, "rpc-url", "", "node endpoint (overrides TM2_RPC_URL)")
	root.PersistentFlags().StringVar(&a.transport, "transport", "", "transport: http|ws (overrides TM2_TRANSPORT)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "output format: text|json|yaml")

	root.AddCommand(
		statusCmd(a),
		blockCmd(a),
		balanceCmd(a),
		accountCmd(a),
		broadcastCmd(a),
		waitTxCmd(a),
		addressCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(log.NewNoopLogger())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("rpc-url") {
		cfg.RPCURL = a.rpcURL
	}
	if cmd.Flags().Changed("transport") {
		cfg.Transport = a.transport
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.out, err = newPrinter(a.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	a.lg = log.NewZapLogger(cfg.Log).WithName("tm2client")
	ctx := log.SetContextLogger(cmd.Context(), a.lg)
	cmd.SetContext(ctx)

	registry := prometheus.NewRegistry()
	a.metrics = rpc.NewMetrics(registry)
	if cfg.MetricsAddr != "" {
		a.serveMetrics(registry, cfg.MetricsAddr)
	}

	return nil
}

func (a *app) serveMetrics(registry *prometheus.Registry, addr string) {
	metricsEndpoint := "/metrics"
	mux := http.NewServeMux()
	mux.Handle(metricsEndpoint, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	a.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.lg.Info("Prometheus metrics available", "listenAddr", addr, "endpoint", metricsEndpoint)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.lg.Error("metrics server failure", "error", err)
		}
	}()
}

// connect returns the provider for the configured transport, creating it on
// first use.
func (a *app) connect(ctx context.Context) (provider.Provider, error) {
	if a.provider != nil {
		return a.provider, nil
	}

	newProvider := a.newProvider
	if newProvider == nil {
		newProvider = a.dial
	}
	p, closeFn, err := newProvider(ctx)
	if err != nil {
		return nil, err
	}
	a.provider = p
	a.closeProvider = closeFn
	return p, nil
}

func (a *app) dial(ctx context.Context) (provider.Provider, func() error, error) {
	opts := []provider.Option{
		provider.WithRequestTimeout(a.cfg.RequestTimeout),
		provider.WithMetrics(a.metrics),
	}

	if a.cfg.Transport == transportHTTP {
		return provider.NewHTTPProvider(a.cfg.RPCURL, opts...), nil, nil
	}

	p := provider.NewWSProvider(ctx, a.cfg.RPCURL, opts...)
	if err := p.WaitConnected(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", a.cfg.RPCURL, err)
	}
	return p, p.Close, nil
}

func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.closeProvider != nil {
		errs = append(errs, a.closeProvider())
	}
	if a.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		errs = append(errs, a.metricsServer.Shutdown(shutdownCtx))
	}
	return errors.Join(errs...)
}
