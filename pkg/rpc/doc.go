// Package rpc implements the JSON-RPC 2.0 plumbing used to talk to a
// Tendermint2 node.
//
// # Envelopes
//
// Request and Response mirror the wire envelopes. NewRequest assigns a fresh
// id from NextRequestID, which is unique for the lifetime of the process:
//
//	req := rpc.NewRequest("block", "42")
//	// {"jsonrpc":"2.0","id":1700000000001,"method":"block","params":["42"]}
//
// Response.Unmarshal applies the error-before-result rule: a response that
// carries an error object yields that *Error even when a result is present.
//
// # Transports
//
// Both transports implement Caller:
//
//   - HTTPTransport posts every envelope to one URL and keeps no state
//     between calls.
//   - WebsocketDialer keeps one connection open and multiplexes concurrent
//     calls over it. Calls are correlated to responses by id through a
//     per-dialer table; each entry is removed exactly once, by its response,
//     its timeout, the caller's context or the connection closing.
//
// Neither transport retries. A protocol error is not a transport error: Call
// returns the response and leaves the decision to the caller.
//
//	dialer := rpc.NewWebsocketDialer(rpc.DefaultWebsocketDialerConfig, nil)
//	if err := dialer.Dial(ctx, "ws://127.0.0.1:26657/websocket", nil); err != nil {
//	    return err
//	}
//	defer dialer.Close()
//
//	req := rpc.NewRequest("status")
//	res, err := dialer.Call(ctx, &req)
//
// # Metrics
//
// Metrics exposes Prometheus collectors for call counts, latencies, in-flight
// websocket calls and discarded responses. Passing a nil *Metrics disables
// recording.
package rpc
