package provider_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tm2-go-client/pkg/provider"
	"github.com/gnolang/tm2-go-client/pkg/rpc"
)

// methodHandler produces the result of one method, or a protocol error.
type methodHandler func(params []any) (any, *rpc.Error)

// fakeNode answers JSON-RPC requests from per-method handlers and records
// every request it receives.
type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]methodHandler
	requests []rpc.Request
}

func newFakeNode() *fakeNode {
	return &fakeNode{handlers: make(map[string]methodHandler)}
}

func (n *fakeNode) on(method string, h methodHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.handlers[method] = h
}

func (n *fakeNode) result(method string, result any) {
	n.on(method, func([]any) (any, *rpc.Error) { return result, nil })
}

func (n *fakeNode) lastParams(method string) []any {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := len(n.requests) - 1; i >= 0; i-- {
		if n.requests[i].Method == method {
			return n.requests[i].Params
		}
	}
	return nil
}

func (n *fakeNode) handle(req rpc.Request) rpc.Response {
	n.mu.Lock()
	n.requests = append(n.requests, req)
	h, ok := n.handlers[req.Method]
	n.mu.Unlock()

	if !ok {
		return rpc.NewErrorResponse(req.ID, -32601, "Method not found")
	}
	result, rpcErr := h(req.Params)
	if rpcErr != nil {
		return rpc.Response{JSONRPC: rpc.Version, ID: req.ID, Error: rpcErr}
	}
	res, err := rpc.NewResponse(req.ID, result)
	if err != nil {
		return rpc.NewErrorResponse(req.ID, -32603, err.Error())
	}
	return res
}

func (n *fakeNode) httpServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpc.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(n.handle(req))
	}))
	t.Cleanup(server.Close)
	return server
}

func (n *fakeNode) wsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return n.slowWSServer(t, 0)
}

// slowWSServer holds every handshake for delay before upgrading.
func (n *fakeNode) slowWSServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var writeMu sync.Mutex
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req rpc.Request
			if err := json.Unmarshal(raw, &req); err != nil {
				continue
			}
			// Answer concurrently so responses may overtake each other.
			go func() {
				res := n.handle(req)
				writeMu.Lock()
				defer writeMu.Unlock()
				_ = conn.WriteJSON(res)
			}()
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// testedProvider is the full surface shared by both providers.
type testedProvider interface {
	provider.Provider
	Health(ctx context.Context) error
	GetBlockNumberFromConsensusState(ctx context.Context) (int64, error)
	GetUnconfirmedTxs(ctx context.Context, limit int) (provider.UnconfirmedTxs, error)
}

type transportCase struct {
	name  string
	start func(t *testing.T, node *fakeNode) testedProvider
}

var transports = []transportCase{
	{
		name: "http",
		start: func(t *testing.T, node *fakeNode) testedProvider {
			return provider.NewHTTPProvider(node.httpServer(t).URL)
		},
	},
	{
		name: "ws",
		start: func(t *testing.T, node *fakeNode) testedProvider {
			server := node.wsServer(t)
			ctx, cancel := context.WithCancel(context.Background())
			t.Cleanup(cancel)

			cfg := rpc.DefaultWebsocketDialerConfig
			cfg.RequestTimeout = 2 * time.Second
			cfg.OpenPollInterval = 20 * time.Millisecond

			p := provider.NewWSProvider(ctx, "ws://"+server.Listener.Addr().String(), provider.WithDialerConfig(cfg))
			t.Cleanup(func() { _ = p.Close() })
			require.NoError(t, p.WaitConnected(ctx))
			return p
		},
	},
}

func abciResult(data *string, abciErr map[string]any, log string) map[string]any {
	var dataField any
	if data != nil {
		dataField = *data
	}
	var errField any
	if abciErr != nil {
		errField = abciErr
	}
	return map[string]any{
		"response": map[string]any{
			"ResponseBase": map[string]any{
				"Error":  errField,
				"Data":   dataField,
				"Events": nil,
				"Log":    log,
				"Info":   "",
			},
			"Key":    nil,
			"Value":  nil,
			"Proof":  nil,
			"Height": "0",
		},
	}
}

func b64(s string) *string {
	encoded := base64.StdEncoding.EncodeToString([]byte(s))
	return &encoded
}

func statusResult(network string, height int64) map[string]any {
	return map[string]any{
		"node_info": map[string]any{"network": network, "moniker": "node0"},
		"sync_info": map[string]any{
			"latest_block_height": strconv.FormatInt(height, 10),
			"catching_up":         false,
		},
		"validator_info": map[string]any{"address": "g1val", "voting_power": "10"},
	}
}
