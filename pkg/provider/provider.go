package provider

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/gnolang/tm2-go-client/pkg/rpc"
	"github.com/gnolang/tm2-go-client/pkg/tx"
)

// DefaultDenomination is the native denomination of gno.land chains.
const DefaultDenomination = "ugnot"

// Provider reads chain state and submits transactions. Heights <= 0 select
// the latest block.
type Provider interface {
	GetBalance(ctx context.Context, address, denom string, height int64) (uint64, error)
	GetAccountSequence(ctx context.Context, address string, height int64) (uint64, error)
	GetAccountNumber(ctx context.Context, address string, height int64) (uint64, error)
	GetAccount(ctx context.Context, address string, height int64) (ABCIAccount, error)
	GetBlock(ctx context.Context, height int64) (BlockInfo, error)
	GetBlockResult(ctx context.Context, height int64) (BlockResult, error)
	GetBlockNumber(ctx context.Context) (int64, error)
	GetConsensusParams(ctx context.Context, height int64) (ConsensusParams, error)
	GetNetwork(ctx context.Context) (NetworkInfo, error)
	GetStatus(ctx context.Context) (Status, error)
	GetGasPrice(ctx context.Context) (uint64, error)
	EstimateGas(ctx context.Context, t *tx.Tx) (int64, error)
	SendTransactionSync(ctx context.Context, encodedTx string) (BroadcastTxSyncResult, error)
	SendTransactionCommit(ctx context.Context, encodedTx string) (BroadcastTxCommitResult, error)
	SendTransaction(ctx context.Context, encodedTx string, mode BroadcastMode) (string, error)
	WaitForTransaction(ctx context.Context, hash string, opts ...WaitOption) (*tx.Tx, error)
}

var (
	_ Provider = (*HTTPProvider)(nil)
	_ Provider = (*WSProvider)(nil)
)

const tracerName = "github.com/gnolang/tm2-go-client/pkg/provider"

type options struct {
	httpClient     *http.Client
	httpConfig     rpc.HTTPTransportConfig
	dialerConfig   rpc.WebsocketDialerConfig
	metrics        *rpc.Metrics
	tracerProvider trace.TracerProvider
	onClose        func(error)
}

func newOptions(opts []Option) options {
	o := options{
		httpConfig:   rpc.DefaultHTTPTransportConfig,
		dialerConfig: rpc.DefaultWebsocketDialerConfig,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	return o
}

// Option customizes a provider.
type Option func(*options)

// WithHTTPClient replaces the client used by an HTTPProvider.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRequestTimeout bounds every request, on both transports.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		o.httpConfig.Timeout = d
		o.dialerConfig.RequestTimeout = d
	}
}

// WithDialerConfig replaces the websocket configuration of a WSProvider.
func WithDialerConfig(cfg rpc.WebsocketDialerConfig) Option {
	return func(o *options) { o.dialerConfig = cfg }
}

// WithMetrics records transport metrics on m.
func WithMetrics(m *rpc.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracerProvider selects where call spans go. The global provider is
// used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithCloseHandler is invoked once when a WSProvider's connection ends.
func WithCloseHandler(fn func(error)) Option {
	return func(o *options) { o.onClose = fn }
}
