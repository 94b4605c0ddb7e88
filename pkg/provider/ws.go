package provider

import (
	"context"
	"errors"
	"sync"

	"github.com/gnolang/tm2-go-client/pkg/log"
	"github.com/gnolang/tm2-go-client/pkg/rpc"
)

// WSProvider talks to a node over one multiplexed websocket connection.
type WSProvider struct {
	*client
	dialer *rpc.WebsocketDialer
	url    string

	dialDone chan struct{}
	mu       sync.Mutex
	dialErr  error
}

// NewWSProvider starts connecting to url, e.g. "ws://127.0.0.1:26657/websocket",
// and returns immediately. Calls made before the connection is open wait for
// it as configured by the dialer's open polling. The connection lives until
// ctx is cancelled or Close is called.
func NewWSProvider(ctx context.Context, url string, opts ...Option) *WSProvider {
	o := newOptions(opts)
	dialer := rpc.NewWebsocketDialer(o.dialerConfig, o.metrics)

	p := &WSProvider{
		client:   newClient(dialer, o.tracerProvider),
		dialer:   dialer,
		url:      url,
		dialDone: make(chan struct{}),
	}

	go func() {
		defer close(p.dialDone)

		err := dialer.Dial(ctx, url, o.onClose)
		if err == nil {
			return
		}

		lg := log.FromContext(ctx).WithName("ws-provider")
		if errors.Is(err, rpc.ErrConnectionClosed) {
			lg.Debug("closed before connecting", "url", url)
		} else {
			lg.Error("failed to connect", "url", url, "error", err)
		}
		p.mu.Lock()
		p.dialErr = err
		p.mu.Unlock()
	}()

	return p
}

// WaitConnected blocks until the first connection attempt finished and
// returns its error. A connection that already ended, for instance through
// Close, yields rpc.ErrConnectionClosed.
func (p *WSProvider) WaitConnected(ctx context.Context) error {
	select {
	case <-p.dialDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	err := p.dialErr
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if !p.dialer.IsConnected() {
		return rpc.ErrConnectionClosed
	}
	return nil
}

// URL returns the node endpoint.
func (p *WSProvider) URL() string {
	return p.url
}

// Close closes the connection. Calls still waiting for a response fail with
// rpc.ErrConnectionClosed.
func (p *WSProvider) Close() error {
	return p.dialer.Close()
}
