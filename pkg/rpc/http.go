package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gnolang/tm2-go-client/pkg/log"
)

// Caller sends one request and returns the matching response. A response
// that carries a protocol error is returned without an error; inspecting it
// is up to the caller.
type Caller interface {
	Call(ctx context.Context, req *Request) (*Response, error)
}

// HTTPTransportConfig configures an HTTPTransport.
type HTTPTransportConfig struct {
	// Timeout bounds one round trip, including reading the body.
	Timeout time.Duration
	// MaxResponseBytes caps the body size read from the node.
	MaxResponseBytes int64
}

var DefaultHTTPTransportConfig = HTTPTransportConfig{
	Timeout:          15 * time.Second,
	MaxResponseBytes: 64 << 20,
}

// HTTPTransport posts each envelope to a single endpoint. It keeps no state
// between calls and never retries.
type HTTPTransport struct {
	url     string
	cfg     HTTPTransportConfig
	client  *http.Client
	metrics *Metrics
}

var _ Caller = (*HTTPTransport)(nil)

// HTTPOption customizes an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is left untouched.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.client = client }
}

// WithHTTPMetrics records every call on m.
func WithHTTPMetrics(m *Metrics) HTTPOption {
	return func(t *HTTPTransport) { t.metrics = m }
}

// NewHTTPTransport creates a transport posting to url.
func NewHTTPTransport(url string, cfg HTTPTransportConfig, opts ...HTTPOption) *HTTPTransport {
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultHTTPTransportConfig.MaxResponseBytes
	}

	t := &HTTPTransport{
		url:    url,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// URL returns the endpoint the transport posts to.
func (t *HTTPTransport) URL() string {
	return t.url
}

// Call performs one POST round trip.
func (t *HTTPTransport) Call(ctx context.Context, req *Request) (res *Response, err error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	started := time.Now()
	defer func() { t.metrics.observe(transportHTTP, req.Method, res, err, started) }()

	lg := log.FromContext(ctx).WithName("http-transport")

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalingRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	lg.Debug("sending request", "method", req.Method, "id", uint64(req.ID))

	httpRes, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	defer httpRes.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpRes.Body, t.cfg.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadingMessage, err)
	}

	if httpRes.StatusCode < 200 || httpRes.StatusCode >= 300 {
		lg.Warn("unexpected status", "method", req.Method, "status", httpRes.StatusCode)
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, httpRes.StatusCode, http.StatusText(httpRes.StatusCode))
	}

	var decoded Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingResponse, err)
	}

	return &decoded, nil
}
