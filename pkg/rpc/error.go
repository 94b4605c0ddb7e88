package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// Connection errors
	ErrAlreadyConnected         = errors.New("already connected")
	ErrNotConnected             = errors.New("not connected to server")
	ErrConnectionNotEstablished = errors.New("connection not established: maximum number of attempts exceeded")
	ErrConnectionClosed         = errors.New("connection closed")
	ErrConnectionTimeout        = errors.New("websocket connection timeout")
	ErrReadingMessage           = errors.New("error reading message")
	ErrDialingWebsocket         = errors.New("error dialing websocket server")
	ErrSendingPing              = errors.New("error sending ping")

	// Request/Response errors
	ErrNilRequest         = errors.New("nil request")
	ErrDuplicateRequestID = errors.New("request id already in flight")
	ErrMarshalingRequest  = errors.New("error marshaling request")
	ErrSendingRequest     = errors.New("error sending request")
	ErrUnexpectedStatus   = errors.New("unexpected http status")
	ErrDecodingResponse   = errors.New("error decoding response")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrNoResponse         = errors.New("no response received")
	ErrInvalidResponse    = errors.New("invalid response")
	ErrEmptyResult        = errors.New("invalid response returned")
)

// Error is the error object of a JSON-RPC response. Its Error method returns
// the node-provided message unchanged.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// DataString returns Data when it is a JSON string, or its raw text otherwise.
func (e *Error) DataString() string {
	if len(e.Data) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil {
		return s
	}
	return string(e.Data)
}

// GoString keeps the code visible in %#v output.
func (e *Error) GoString() string {
	return fmt.Sprintf("rpc.Error{Code: %d, Message: %q}", e.Code, e.Message)
}
