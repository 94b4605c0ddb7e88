package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gnolang/tm2-go-client/pkg/log"
)

// WebsocketDialerConfig contains configuration options for the WebSocket dialer.
type WebsocketDialerConfig struct {
	// HandshakeTimeout is the duration to wait for the WebSocket handshake to complete
	HandshakeTimeout time.Duration

	// RequestTimeout bounds the wait for the response of a single call
	RequestTimeout time.Duration

	// PingInterval is how often a ping control frame is sent; zero disables pings
	PingInterval time.Duration

	// OpenPollInterval and OpenPollAttempts bound how long a call waits for
	// a connection that is still being established
	OpenPollInterval time.Duration
	OpenPollAttempts int
}

// DefaultWebsocketDialerConfig matches the node defaults: 15s per request,
// ten 200ms polls while the socket opens.
var DefaultWebsocketDialerConfig = WebsocketDialerConfig{
	HandshakeTimeout: 5 * time.Second,
	RequestTimeout:   15 * time.Second,
	PingInterval:     20 * time.Second,
	OpenPollInterval: 200 * time.Millisecond,
	OpenPollAttempts: 10,
}

type callResult struct {
	res *Response
	err error
}

// pendingRequest is one entry of the correlation table. done is buffered so
// whoever removes the entry from the table can deliver without blocking.
type pendingRequest struct {
	done  chan callResult
	timer *time.Timer
}

// WebsocketDialer multiplexes concurrent calls over one WebSocket
// connection, correlating responses to requests by id.
//
// Every call resolves exactly once: by its response, by its own timeout, by
// the caller's context or by the connection closing, whichever removes its
// entry from the table first. Responses for unknown ids are dropped.
type WebsocketDialer struct {
	cfg     WebsocketDialerConfig
	metrics *Metrics

	mu      sync.Mutex // protects the fields below
	conn    *websocket.Conn
	connCtx context.Context
	cancel  context.CancelFunc
	lg      log.Logger
	closed  bool
	pending map[uint64]*pendingRequest

	writeMu sync.Mutex // serializes data frame writes
}

var _ Caller = (*WebsocketDialer)(nil)

// NewWebsocketDialer creates a dialer. Metrics may be nil.
func NewWebsocketDialer(cfg WebsocketDialerConfig, metrics *Metrics) *WebsocketDialer {
	return &WebsocketDialer{
		cfg:     cfg,
		metrics: metrics,
		lg:      log.NewNoopLogger(),
		pending: make(map[uint64]*pendingRequest),
	}
}

// Dial opens the connection and returns once the handshake completes. Read
// and keep-alive loops then run in the background until ctx is cancelled,
// Close is called or the connection fails; handleClosure is invoked once at
// that point with the failure, if any.
//
// Example:
//
//	dialer := rpc.NewWebsocketDialer(rpc.DefaultWebsocketDialerConfig, nil)
//	err := dialer.Dial(ctx, "ws://127.0.0.1:26657/websocket", func(err error) {
//	    if err != nil {
//	        lg.Error("connection lost", "error", err)
//	    }
//	})
func (d *WebsocketDialer) Dial(parentCtx context.Context, url string, handleClosure func(err error)) error {
	d.mu.Lock()
	closed, connected := d.closed, d.isConnectedLocked()
	d.mu.Unlock()
	if closed {
		return ErrConnectionClosed
	}
	if connected {
		return ErrAlreadyConnected
	}

	wsDialer := websocket.Dialer{
		HandshakeTimeout:  d.cfg.HandshakeTimeout,
		EnableCompression: true,
	}
	conn, _, err := wsDialer.DialContext(parentCtx, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDialingWebsocket, err)
	}

	ctx, cancel := context.WithCancel(parentCtx)
	lg := log.FromContext(parentCtx).WithName("ws-dialer").WithKV("conn", uuid.NewString())

	d.mu.Lock()
	// Close may have run while the handshake was in flight.
	if d.closed {
		d.mu.Unlock()
		cancel()
		_ = conn.Close()
		return ErrConnectionClosed
	}
	d.conn = conn
	d.connCtx = ctx
	d.cancel = cancel
	d.lg = lg
	d.mu.Unlock()

	lg.Info("connected", "url", url)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		closeErr error
	)
	finish := func(err error) {
		once.Do(func() { closeErr = err })
		cancel()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		d.readMessages(ctx, conn, lg, finish)
	}()
	go func() {
		defer wg.Done()
		d.pingPeriodically(ctx, conn, lg, finish)
	}()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
		wg.Wait()

		d.mu.Lock()
		if d.conn == conn {
			d.conn = nil
		}
		d.mu.Unlock()
		d.failPending(ErrConnectionClosed)

		lg.Info("connection closed", "error", closeErr)
		if handleClosure != nil {
			handleClosure(closeErr)
		}
	}()

	return nil
}

// IsConnected reports whether the connection is open.
func (d *WebsocketDialer) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.isConnectedLocked()
}

func (d *WebsocketDialer) isConnectedLocked() bool {
	return d.conn != nil && d.connCtx.Err() == nil
}

// Close shuts the connection down and rejects every pending call with
// ErrConnectionClosed. Calls and dials made after Close fail immediately,
// and a dial still in its handshake is discarded once it completes.
func (d *WebsocketDialer) Close() error {
	d.mu.Lock()
	d.closed = true
	cancel := d.cancel
	conn := d.conn
	d.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		if errors.Is(err, websocket.ErrCloseSent) {
			err = nil
		}
	}
	if cancel != nil {
		cancel()
	}

	d.failPending(ErrConnectionClosed)
	return err
}

// Pending returns the number of calls awaiting a response.
func (d *WebsocketDialer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.pending)
}

// Call sends req and waits for the response with the same id. When the
// connection is still being established, Call first polls for it to open.
//
// The wait ends with ErrRequestTimeout after RequestTimeout, or earlier when
// ctx is done or the connection closes.
func (d *WebsocketDialer) Call(ctx context.Context, req *Request) (res *Response, err error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	started := time.Now()
	defer func() { d.metrics.observe(transportWS, req.Method, res, err, started) }()

	if err := d.waitForOpen(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalingRequest, err)
	}

	id := uint64(req.ID)
	p := &pendingRequest{done: make(chan callResult, 1)}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	if !d.isConnectedLocked() {
		d.mu.Unlock()
		return nil, ErrNotConnected
	}
	if _, exists := d.pending[id]; exists {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrDuplicateRequestID, id)
	}
	d.pending[id] = p
	p.timer = time.AfterFunc(d.cfg.RequestTimeout, func() {
		d.settle(id, callResult{err: fmt.Errorf("%w: %s after %s", ErrRequestTimeout, req.Method, d.cfg.RequestTimeout)})
	})
	conn := d.conn
	lg := d.lg
	d.mu.Unlock()

	d.metrics.inFlight(1)
	defer d.metrics.inFlight(-1)

	lg.Debug("sending request", "method", req.Method, "id", id)

	d.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, payload)
	d.writeMu.Unlock()
	if err != nil {
		d.settle(id, callResult{err: fmt.Errorf("%w: %w", ErrSendingRequest, err)})
	}

	select {
	case r := <-p.done:
		return r.res, r.err
	case <-ctx.Done():
		d.settle(id, callResult{err: fmt.Errorf("%w: %w", ErrNoResponse, ctx.Err())})
	}

	// Either the cancellation above or a concurrent settle filled done.
	r := <-p.done
	return r.res, r.err
}

// settle removes id from the table and delivers res to its caller. It
// reports false when the entry was already gone, in which case res is dropped.
func (d *WebsocketDialer) settle(id uint64, res callResult) bool {
	d.mu.Lock()
	p, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
	}
	d.mu.Unlock()

	if !ok {
		return false
	}

	p.timer.Stop()
	p.done <- res
	return true
}

func (d *WebsocketDialer) failPending(err error) {
	d.mu.Lock()
	ids := make([]uint64, 0, len(d.pending))
	for id := range d.pending {
		ids = append(ids, id)
	}
	d.mu.Unlock()

	for _, id := range ids {
		d.settle(id, callResult{err: err})
	}
}

func (d *WebsocketDialer) waitForOpen(ctx context.Context) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrConnectionClosed
	}
	if d.IsConnected() {
		return nil
	}

	attempts := d.cfg.OpenPollAttempts
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(d.cfg.OpenPollInterval), uint64(attempts)),
		ctx,
	)

	err := backoff.Retry(func() error {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed {
			return backoff.Permanent(ErrConnectionClosed)
		}
		if d.isConnectedLocked() {
			return nil
		}
		return ErrNotConnected
	}, policy)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConnectionClosed) {
		return ErrConnectionClosed
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrConnectionNotEstablished, ctxErr)
	}
	return ErrConnectionNotEstablished
}

func (d *WebsocketDialer) readMessages(ctx context.Context, conn *websocket.Conn, lg log.Logger, finish func(error)) {
	for {
		_, raw, err := conn.ReadMessage()
		if ctx.Err() != nil {
			finish(nil)
			return
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			lg.Error("websocket connection timeout", "error", err)
			finish(fmt.Errorf("%w: %w", ErrConnectionTimeout, err))
			return
		} else if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			lg.Info("server closed the connection")
			finish(nil)
			return
		} else if err != nil {
			lg.Error("websocket read error", "error", err)
			finish(fmt.Errorf("%w: %w", ErrReadingMessage, err))
			return
		}

		var res Response
		if err := json.Unmarshal(raw, &res); err != nil {
			lg.Warn("malformed message", "message", string(raw), "error", err)
			continue
		}

		if !d.settle(uint64(res.ID), callResult{res: &res}) {
			lg.Debug("discarding unmatched response", "id", uint64(res.ID))
			d.metrics.unmatched()
		}
	}
}

func (d *WebsocketDialer) pingPeriodically(ctx context.Context, conn *websocket.Conn, lg log.Logger, finish func(error)) {
	if d.cfg.PingInterval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(d.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(d.cfg.PingInterval)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				if ctx.Err() != nil {
					return
				}
				lg.Error("error sending ping", "error", err)
				finish(fmt.Errorf("%w: %w", ErrSendingPing, err))
				return
			}
		}
	}
}
