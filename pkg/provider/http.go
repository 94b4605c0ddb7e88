package provider

import (
	"github.com/gnolang/tm2-go-client/pkg/rpc"
)

// HTTPProvider talks to a node over JSON-RPC on HTTP. It is stateless and
// safe for concurrent use.
type HTTPProvider struct {
	*client
	transport *rpc.HTTPTransport
}

// NewHTTPProvider creates a provider posting to url, e.g. "http://127.0.0.1:26657".
func NewHTTPProvider(url string, opts ...Option) *HTTPProvider {
	o := newOptions(opts)

	httpOpts := []rpc.HTTPOption{rpc.WithHTTPMetrics(o.metrics)}
	if o.httpClient != nil {
		httpOpts = append(httpOpts, rpc.WithHTTPClient(o.httpClient))
	}
	transport := rpc.NewHTTPTransport(url, o.httpConfig, httpOpts...)

	return &HTTPProvider{
		client:    newClient(transport, o.tracerProvider),
		transport: transport,
	}
}

// URL returns the node endpoint.
func (p *HTTPProvider) URL() string {
	return p.transport.URL()
}
