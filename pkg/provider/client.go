package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gnolang/tm2-go-client/pkg/log"
	"github.com/gnolang/tm2-go-client/pkg/rpc"
	"github.com/gnolang/tm2-go-client/pkg/tx"
)

// client implements every Provider operation over any rpc.Caller. The
// transport specific providers embed it.
type client struct {
	caller rpc.Caller
	tracer trace.Tracer
}

func newClient(caller rpc.Caller, tp trace.TracerProvider) *client {
	return &client{caller: caller, tracer: tp.Tracer(tracerName)}
}

// call performs method and decodes its result into out.
func (c *client) call(ctx context.Context, method string, out any, params ...any) error {
	ctx, span := c.tracer.Start(ctx, "tm2."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", method),
		),
	)
	defer span.End()

	req := rpc.NewRequest(method, params...)
	res, err := c.caller.Call(ctx, &req)
	if err == nil {
		err = res.Unmarshal(out)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.FromContext(ctx).WithName("provider").Debug("call failed", "method", method, "id", uint64(req.ID), "error", err)
		return err
	}
	return nil
}

// heightParam renders a block height; non-positive heights are sent as null,
// which the node reads as the latest block.
func heightParam(height int64) any {
	if height <= 0 {
		return nil
	}
	return strconv.FormatInt(height, 10)
}

func (c *client) abciQuery(ctx context.Context, path, data string, height int64) (ABCIResponse, error) {
	if height < 0 {
		height = 0
	}

	var res ABCIResponse
	err := c.call(ctx, ABCIQueryEndpoint, &res, path, data, strconv.FormatInt(height, 10), false)
	return res, err
}

// GetBalance returns the balance of address in denom, DefaultDenomination when empty.
func (c *client) GetBalance(ctx context.Context, address, denom string, height int64) (uint64, error) {
	if denom == "" {
		denom = DefaultDenomination
	}

	res, err := c.abciQuery(ctx, balancesPath+address, "", height)
	if err != nil {
		return 0, err
	}
	return ExtractBalance(res.Response.ResponseBase.Data, denom)
}

// GetAccountSequence returns 0 for accounts the chain has not seen yet.
func (c *client) GetAccountSequence(ctx context.Context, address string, height int64) (uint64, error) {
	res, err := c.abciQuery(ctx, accountsPath+address, "", height)
	if err != nil {
		return 0, err
	}
	return ExtractSequence(res.Response.ResponseBase.Data), nil
}

// GetAccountNumber fails with ErrAccountNotInitialized for accounts the chain
// has not seen yet.
func (c *client) GetAccountNumber(ctx context.Context, address string, height int64) (uint64, error) {
	res, err := c.abciQuery(ctx, accountsPath+address, "", height)
	if err != nil {
		return 0, err
	}
	return ExtractAccountNumber(res.Response.ResponseBase.Data)
}

func (c *client) GetAccount(ctx context.Context, address string, height int64) (ABCIAccount, error) {
	res, err := c.abciQuery(ctx, accountsPath+address, "", height)
	if err != nil {
		return ABCIAccount{}, err
	}
	return ExtractAccount(res.Response.ResponseBase.Data)
}

func (c *client) GetBlock(ctx context.Context, height int64) (BlockInfo, error) {
	var block BlockInfo
	err := c.call(ctx, BlockEndpoint, &block, heightParam(height))
	return block, err
}

func (c *client) GetBlockResult(ctx context.Context, height int64) (BlockResult, error) {
	var result BlockResult
	err := c.call(ctx, BlockResultsEndpoint, &result, heightParam(height))
	return result, err
}

// GetBlockNumber returns the latest block height reported by status.
func (c *client) GetBlockNumber(ctx context.Context) (int64, error) {
	status, err := c.GetStatus(ctx)
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseInt(status.SyncInfo.LatestBlockHeight, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHeight, status.SyncInfo.LatestBlockHeight)
	}
	return height, nil
}

// GetBlockNumberFromConsensusState returns the height the node is currently
// reaching consensus on, read from round_state's "height/round/step".
func (c *client) GetBlockNumberFromConsensusState(ctx context.Context) (int64, error) {
	state, err := c.GetConsensusState(ctx)
	if err != nil {
		return 0, err
	}

	var hrs string
	if raw, ok := state.RoundState["height/round/step"]; ok {
		if err := json.Unmarshal(raw, &hrs); err != nil {
			return 0, fmt.Errorf("%w: height/round/step: %w", ErrInvalidHeight, err)
		}
	}
	heightPart, _, _ := strings.Cut(hrs, "/")
	height, err := strconv.ParseInt(heightPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHeight, hrs)
	}
	return height, nil
}

func (c *client) GetConsensusParams(ctx context.Context, height int64) (ConsensusParams, error) {
	var params ConsensusParams
	err := c.call(ctx, ConsensusParamsEndpoint, &params, heightParam(height))
	return params, err
}

func (c *client) GetConsensusState(ctx context.Context) (ConsensusState, error) {
	var state ConsensusState
	err := c.call(ctx, ConsensusStateEndpoint, &state)
	return state, err
}

func (c *client) GetNetwork(ctx context.Context) (NetworkInfo, error) {
	var info NetworkInfo
	err := c.call(ctx, NetInfoEndpoint, &info)
	return info, err
}

func (c *client) GetStatus(ctx context.Context) (Status, error) {
	var status Status
	err := c.call(ctx, StatusEndpoint, &status)
	return status, err
}

// Health returns nil when the node answers its health probe.
func (c *client) Health(ctx context.Context) error {
	var empty struct{}
	return c.call(ctx, HealthEndpoint, &empty)
}

func (c *client) GetABCIInfo(ctx context.Context) (ABCIInfo, error) {
	var info ABCIInfo
	err := c.call(ctx, ABCIInfoEndpoint, &info)
	return info, err
}

func (c *client) GetNumUnconfirmedTxs(ctx context.Context) (UnconfirmedTxs, error) {
	var txs UnconfirmedTxs
	err := c.call(ctx, NumUnconfirmedTxsEndpoint, &txs)
	return txs, err
}

// GetUnconfirmedTxs lists up to limit mempool transactions; limit <= 0 keeps
// the node default.
func (c *client) GetUnconfirmedTxs(ctx context.Context, limit int) (UnconfirmedTxs, error) {
	var param any
	if limit > 0 {
		param = strconv.Itoa(limit)
	}

	var txs UnconfirmedTxs
	err := c.call(ctx, UnconfirmedTxsEndpoint, &txs, param)
	return txs, err
}

func (c *client) GetValidators(ctx context.Context, height int64) (Validators, error) {
	var validators Validators
	err := c.call(ctx, ValidatorsEndpoint, &validators, heightParam(height))
	return validators, err
}

func (c *client) GetGenesis(ctx context.Context) (Genesis, error) {
	var genesis Genesis
	err := c.call(ctx, GenesisEndpoint, &genesis)
	return genesis, err
}

// GetGasPrice returns the minimum price of one unit of gas, rounded up. Nodes
// without the auth/gasprice query yield ErrNotSupported.
func (c *client) GetGasPrice(ctx context.Context) (uint64, error) {
	res, err := c.abciQuery(ctx, gasPricePath, "", 0)
	if err != nil {
		return 0, err
	}
	base := res.Response.ResponseBase
	if base.Error != nil || base.Data == nil || *base.Data == "" {
		return 0, fmt.Errorf("%w: %s", ErrNotSupported, gasPricePath)
	}

	price, err := ParseGasPrice(*base.Data)
	if err != nil {
		return 0, err
	}
	return price.PerUnit(), nil
}

// EstimateGas simulates t and returns the gas it used.
func (c *client) EstimateGas(ctx context.Context, t *tx.Tx) (int64, error) {
	res, err := c.abciQuery(ctx, simulatePath, tx.EncodeBase64(t), 0)
	if err != nil {
		return 0, err
	}
	base := res.Response.ResponseBase
	if err := classifyABCIError(base.Error, base.Log); err != nil {
		return 0, err
	}

	sim, err := ExtractSimulateResult(base.Data)
	if err != nil {
		return 0, err
	}
	if err := sim.Err(); err != nil {
		return 0, err
	}

	used, err := sim.GasUsed.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: GasUsed: %w", ErrUnableToParseResponse, err)
	}
	return used, nil
}

// SendTransactionSync broadcasts encodedTx and returns after CheckTx. A
// rejected transaction yields only a *TM2Error carrying the log and hash.
func (c *client) SendTransactionSync(ctx context.Context, encodedTx string) (BroadcastTxSyncResult, error) {
	var res BroadcastTxSyncResult
	if err := c.call(ctx, BroadcastTxSyncEndpoint, &res, encodedTx); err != nil {
		return BroadcastTxSyncResult{}, err
	}
	if err := classifyABCIError(res.Error, res.Log); err != nil {
		return BroadcastTxSyncResult{}, withTxHash(err, res.Hash)
	}
	return res, nil
}

// SendTransactionCommit broadcasts encodedTx and returns once it is in a
// block. CheckTx failures are reported before DeliverTx failures; either
// yields only a *TM2Error carrying the log and hash.
func (c *client) SendTransactionCommit(ctx context.Context, encodedTx string) (BroadcastTxCommitResult, error) {
	var res BroadcastTxCommitResult
	if err := c.call(ctx, BroadcastTxCommitEndpoint, &res, encodedTx); err != nil {
		return BroadcastTxCommitResult{}, err
	}
	if err := classifyABCIError(res.CheckTx.ResponseBase.Error, res.CheckTx.ResponseBase.Log); err != nil {
		return BroadcastTxCommitResult{}, withTxHash(err, res.Hash)
	}
	if err := classifyABCIError(res.DeliverTx.ResponseBase.Error, res.DeliverTx.ResponseBase.Log); err != nil {
		return BroadcastTxCommitResult{}, withTxHash(err, res.Hash)
	}
	return res, nil
}

// SendTransaction broadcasts encodedTx in mode and returns its hash.
func (c *client) SendTransaction(ctx context.Context, encodedTx string, mode BroadcastMode) (string, error) {
	switch mode {
	case BroadcastSync, "":
		res, err := c.SendTransactionSync(ctx, encodedTx)
		if err != nil {
			return "", err
		}
		return res.Hash, nil
	case BroadcastCommit:
		res, err := c.SendTransactionCommit(ctx, encodedTx)
		if err != nil {
			return "", err
		}
		return res.Hash, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBroadcastMode, mode)
	}
}

// WaitForTransaction polls new blocks for the transaction with the given
// base64 hash. See the package level WaitForTransaction.
func (c *client) WaitForTransaction(ctx context.Context, hash string, opts ...WaitOption) (*tx.Tx, error) {
	return WaitForTransaction(ctx, c, hash, opts...)
}
