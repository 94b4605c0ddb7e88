package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

// Version is the protocol tag carried by every envelope.
const Version = "2.0"

// ID identifies one in-flight call. It is sent as a JSON number; responses
// that echo it back as a quoted string are accepted too.
type ID uint64

// UnmarshalJSON accepts both 42 and "42".
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}

	raw := string(data)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid request id %s: %w", string(data), err)
	}
	*id = ID(v)
	return nil
}

var lastRequestID = func() *atomic.Uint64 {
	var v atomic.Uint64
	v.Store(uint64(time.Now().UnixMilli()))
	return &v
}()

// NextRequestID returns a process-wide unique request id. Ids start from the
// current Unix time in milliseconds and increase monotonically, so two
// concurrently open requests never share one.
func NextRequestID() ID {
	return ID(lastRequestID.Add(1))
}

// Request is a JSON-RPC 2.0 request envelope.
//
//	{"jsonrpc": "2.0", "id": 1700000000001, "method": "block", "params": ["42"]}
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      ID     `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// NewRequest builds a request for method with a fresh id. Params are kept in
// order; calling it without params produces an empty array on the wire.
//
// Example:
//
//	req := rpc.NewRequest("abci_query", "auth/accounts/g1...", "", "0", false)
func NewRequest(method string, params ...any) Request {
	if params == nil {
		params = []any{}
	}

	return Request{
		JSONRPC: Version,
		ID:      NextRequestID(),
		Method:  method,
		Params:  params,
	}
}

// Response is a JSON-RPC 2.0 response envelope. When Error is set it takes
// precedence over Result.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse builds a successful response carrying result.
func NewResponse(id ID, result any) (Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrMarshalingRequest, err)
	}

	return Response{
		JSONRPC: Version,
		ID:      id,
		Result:  raw,
	}, nil
}

// NewErrorResponse builds a response carrying a protocol error.
func NewErrorResponse(id ID, code int, message string) Response {
	return Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	}
}

// Err returns the protocol error carried by the response, or nil.
func (r *Response) Err() error {
	if r == nil || r.Error == nil {
		return nil
	}
	return r.Error
}

// Unmarshal decodes the result into v. It fails with ErrInvalidResponse on a
// nil response, with the carried *Error when the node reported one, and
// with ErrEmptyResult when the result is absent or null.
func (r *Response) Unmarshal(v any) error {
	if r == nil {
		return ErrInvalidResponse
	}
	if r.Error != nil {
		return r.Error
	}
	if len(r.Result) == 0 || bytes.Equal(bytes.TrimSpace(r.Result), []byte("null")) {
		return ErrEmptyResult
	}

	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodingResponse, err)
	}
	return nil
}
