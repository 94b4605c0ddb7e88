package provider

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrAccountNotInitialized   = errors.New("account is not initialized")
	ErrABCIDataNotInitialized  = errors.New("abci data is not initialized")
	ErrUnableToParseResponse   = errors.New("unable to parse JSON response")
	ErrInvalidBalance          = errors.New("invalid balance")
	ErrInvalidHeight           = errors.New("invalid block height")
	ErrNotSupported            = errors.New("not supported by the node")
	ErrTransactionFetchTimeout = errors.New("transaction fetch timeout")
	ErrTransactionFetch        = errors.New("unable to fetch transaction")
	ErrTransactionDecode       = errors.New("unable to decode matched transaction")
	ErrUnknownBroadcastMode    = errors.New("unknown broadcast mode")
)

// ErrorKind identifies a Tendermint2 std error.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindInternal
	KindTxDecode
	KindInvalidSequence
	KindUnauthorized
	KindInsufficientFunds
	KindUnknownRequest
	KindInvalidAddress
	KindUnknownAddress
	KindInvalidPubKey
	KindInsufficientCoins
	KindInvalidCoins
	KindInvalidGasWanted
	KindOutOfGas
	KindMemoTooLarge
	KindInsufficientFee
	KindTooManySignatures
	KindNoSignatures
	KindGasOverflow
)

type kindInfo struct {
	typeURL string
	message string
}

var kinds = map[ErrorKind]kindInfo{
	KindUnknown:           {"", "unknown error"},
	KindInternal:          {"/std.InternalError", "internal error encountered"},
	KindTxDecode:          {"/std.TxDecodeError", "unable to decode tx"},
	KindInvalidSequence:   {"/std.InvalidSequenceError", "invalid sequence"},
	KindUnauthorized:      {"/std.UnauthorizedError", "signature is unauthorized"},
	KindInsufficientFunds: {"/std.InsufficientFundsError", "insufficient funds"},
	KindUnknownRequest:    {"/std.UnknownRequestError", "unknown request"},
	KindInvalidAddress:    {"/std.InvalidAddressError", "invalid address"},
	KindUnknownAddress:    {"/std.UnknownAddressError", "unknown address"},
	KindInvalidPubKey:     {"/std.InvalidPubKeyError", "invalid pubkey"},
	KindInsufficientCoins: {"/std.InsufficientCoinsError", "insufficient coins"},
	KindInvalidCoins:      {"/std.InvalidCoinsError", "invalid coins"},
	KindInvalidGasWanted:  {"/std.InvalidGasWantedError", "invalid gas wanted"},
	KindOutOfGas:          {"/std.OutOfGasError", "out of gas"},
	KindMemoTooLarge:      {"/std.MemoTooLargeError", "memo too large"},
	KindInsufficientFee:   {"/std.InsufficientFeeError", "insufficient fee"},
	KindTooManySignatures: {"/std.TooManySignaturesError", "too many signatures"},
	KindNoSignatures:      {"/std.NoSignaturesError", "no signatures"},
	KindGasOverflow:       {"/std.GasOverflowError", "gas overflow"},
}

var kindsByTypeURL = func() map[string]ErrorKind {
	m := make(map[string]ErrorKind, len(kinds))
	for k, info := range kinds {
		if info.typeURL != "" {
			m[info.typeURL] = k
		}
	}
	return m
}()

// String returns the fixed message of the kind.
func (k ErrorKind) String() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}
	return kinds[KindUnknown].message
}

// TypeURL returns the "/std.XxxError" identifier of the kind, empty for KindUnknown.
func (k ErrorKind) TypeURL() string {
	return kinds[k].typeURL
}

// Per-kind sentinels, matched by errors.Is against any *TM2Error of the same kind.
var (
	ErrUnknown           = &TM2Error{Kind: KindUnknown}
	ErrInternal          = &TM2Error{Kind: KindInternal}
	ErrTxDecode          = &TM2Error{Kind: KindTxDecode}
	ErrInvalidSequence   = &TM2Error{Kind: KindInvalidSequence}
	ErrUnauthorized      = &TM2Error{Kind: KindUnauthorized}
	ErrInsufficientFunds = &TM2Error{Kind: KindInsufficientFunds}
	ErrUnknownRequest    = &TM2Error{Kind: KindUnknownRequest}
	ErrInvalidAddress    = &TM2Error{Kind: KindInvalidAddress}
	ErrUnknownAddress    = &TM2Error{Kind: KindUnknownAddress}
	ErrInvalidPubKey     = &TM2Error{Kind: KindInvalidPubKey}
	ErrInsufficientCoins = &TM2Error{Kind: KindInsufficientCoins}
	ErrInvalidCoins      = &TM2Error{Kind: KindInvalidCoins}
	ErrInvalidGasWanted  = &TM2Error{Kind: KindInvalidGasWanted}
	ErrOutOfGas          = &TM2Error{Kind: KindOutOfGas}
	ErrMemoTooLarge      = &TM2Error{Kind: KindMemoTooLarge}
	ErrInsufficientFee   = &TM2Error{Kind: KindInsufficientFee}
	ErrTooManySignatures = &TM2Error{Kind: KindTooManySignatures}
	ErrNoSignatures      = &TM2Error{Kind: KindNoSignatures}
	ErrGasOverflow       = &TM2Error{Kind: KindGasOverflow}
)

// TM2Error is a transaction failure reported by the node. Error returns the
// fixed message of the kind; Log carries the node's diagnostic text.
type TM2Error struct {
	Kind ErrorKind
	Log  string
	// Hash is the transaction hash reported alongside a failed broadcast.
	Hash string
}

func (e *TM2Error) Error() string {
	return e.Kind.String()
}

// Is reports whether target is a *TM2Error of the same kind.
func (e *TM2Error) Is(target error) bool {
	t, ok := target.(*TM2Error)
	return ok && t.Kind == e.Kind
}

// NewTM2Error maps an error type identifier such as "/std.UnauthorizedError"
// to its typed error. Unknown identifiers map to KindUnknown.
func NewTM2Error(typeURL, log string) *TM2Error {
	kind, ok := kindsByTypeURL[typeURL]
	if !ok {
		kind = KindUnknown
	}
	return &TM2Error{Kind: kind, Log: log}
}

// errorTypeKey is the key holding the error identifier in an amino JSON error.
const errorTypeKey = "@type"

// classifyABCIError turns an ABCI error object into a *TM2Error. A nil
// object is not an error.
func classifyABCIError(obj map[string]json.RawMessage, log string) error {
	if obj == nil {
		return nil
	}

	var typeURL string
	if raw, ok := obj[errorTypeKey]; ok {
		if err := json.Unmarshal(raw, &typeURL); err != nil {
			return fmt.Errorf("%w: error type: %w", ErrUnableToParseResponse, err)
		}
	}
	return NewTM2Error(typeURL, log)
}

// withTxHash records hash on err when it is a *TM2Error.
func withTxHash(err error, hash string) error {
	var tmErr *TM2Error
	if errors.As(err, &tmErr) {
		tmErr.Hash = hash
	}
	return err
}
