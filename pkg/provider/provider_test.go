package provider_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tm2-go-client/pkg/provider"
	"github.com/gnolang/tm2-go-client/pkg/rpc"
	"github.com/gnolang/tm2-go-client/pkg/tx"
)

const (
	testAddress = "g1jg8mtutu9khhfwc4nxmuhcpftf0pajdhfvsqf5"
	accountJSON = `{"BaseAccount":{"address":"g1jg8mtutu9khhfwc4nxmuhcpftf0pajdhfvsqf5","coins":"1000ugnot","public_key":null,"account_number":"7","sequence":"12"}}`
)

func forEachTransport(t *testing.T, run func(t *testing.T, node *fakeNode, p testedProvider)) {
	t.Helper()

	for _, transport := range transports {
		transport := transport
		t.Run(transport.name, func(t *testing.T) {
			t.Parallel()

			node := newFakeNode()
			run(t, node, transport.start(t, node))
		})
	}
}

func TestProvider_Status(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		ctx := context.Background()
		node.result(provider.StatusEndpoint, statusResult("dev", 42))

		status, err := p.GetStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, "dev", status.NodeInfo.Network)
		assert.Equal(t, "node0", status.NodeInfo.Moniker)

		height, err := p.GetBlockNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(42), height)
		assert.Equal(t, []any{}, node.lastParams(provider.StatusEndpoint))

		node.result(provider.HealthEndpoint, map[string]any{})
		assert.NoError(t, p.Health(ctx))

		node.on(provider.StatusEndpoint, func([]any) (any, *rpc.Error) {
			res := statusResult("dev", 0)
			res["sync_info"] = map[string]any{"latest_block_height": "abc"}
			return res, nil
		})
		_, err = p.GetBlockNumber(ctx)
		assert.ErrorIs(t, err, provider.ErrInvalidHeight)
	})
}

func TestProvider_ConsensusStateHeight(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		node.result(provider.ConsensusStateEndpoint, map[string]any{
			"round_state": map[string]any{"height/round/step": "128/0/1", "start_time": "2024-01-01T00:00:00Z"},
		})

		height, err := p.GetBlockNumberFromConsensusState(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(128), height)

		node.result(provider.ConsensusStateEndpoint, map[string]any{
			"round_state": map[string]any{"height/round/step": []int{128, 0, 1}},
		})
		_, err = p.GetBlockNumberFromConsensusState(context.Background())
		assert.ErrorIs(t, err, provider.ErrInvalidHeight)
		assert.Contains(t, err.Error(), "cannot unmarshal")
	})
}

func TestProvider_Blocks(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		ctx := context.Background()
		node.result(provider.BlockEndpoint, map[string]any{
			"block_meta": map[string]any{"header": map[string]any{"height": "7", "chain_id": "dev"}},
			"block": map[string]any{
				"header": map[string]any{"height": "7"},
				"data":   map[string]any{"txs": []string{"AAE="}},
			},
		})
		node.result(provider.BlockResultsEndpoint, map[string]any{
			"height": "7",
			"results": map[string]any{
				"deliver_tx": []any{map[string]any{
					"ResponseBase": map[string]any{"Error": nil, "Log": "ok"},
					"GasWanted":    "100",
					"GasUsed":      "80",
				}},
			},
		})

		block, err := p.GetBlock(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "dev", block.BlockMeta.Header.ChainID)
		assert.Equal(t, []string{"AAE="}, block.Block.Data.Txs)
		assert.Equal(t, []any{"7"}, node.lastParams(provider.BlockEndpoint))

		result, err := p.GetBlockResult(ctx, 7)
		require.NoError(t, err)
		require.Len(t, result.Results.DeliverTx, 1)
		assert.Equal(t, "80", result.Results.DeliverTx[0].GasUsed)

		_, err = p.GetBlockResult(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []any{nil}, node.lastParams(provider.BlockResultsEndpoint))
	})
}

func TestProvider_ChainInfo(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		ctx := context.Background()
		node.result(provider.NetInfoEndpoint, map[string]any{"listening": true, "listeners": []string{"Listener(@)"}, "n_peers": "0"})
		node.result(provider.ConsensusParamsEndpoint, map[string]any{
			"block_height":     "3",
			"consensus_params": map[string]any{"Block": map[string]any{"MaxGas": "100000000"}},
		})
		node.result(provider.UnconfirmedTxsEndpoint, map[string]any{"n_txs": "1", "total": "1", "txs": []string{"AAE="}})

		network, err := p.GetNetwork(ctx)
		require.NoError(t, err)
		assert.True(t, network.Listening)

		params, err := p.GetConsensusParams(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "100000000", params.ConsensusParams.Block.MaxGas)

		txs, err := p.GetUnconfirmedTxs(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "1", txs.Count)
		assert.Equal(t, []any{"5"}, node.lastParams(provider.UnconfirmedTxsEndpoint))
	})
}

func TestProvider_Accounts(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		ctx := context.Background()
		node.on(provider.ABCIQueryEndpoint, func(params []any) (any, *rpc.Error) {
			switch params[0] {
			case "bank/balances/" + testAddress:
				return abciResult(b64(`"5gnot,1000ugnot"`), nil, ""), nil
			case "auth/accounts/" + testAddress:
				return abciResult(b64(accountJSON), nil, ""), nil
			default:
				return abciResult(nil, nil, ""), nil
			}
		})

		balance, err := p.GetBalance(ctx, testAddress, "", 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), balance)
		assert.Equal(t, []any{"bank/balances/" + testAddress, "", "0", false}, node.lastParams(provider.ABCIQueryEndpoint))

		balance, err = p.GetBalance(ctx, testAddress, "gnot", 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), balance)

		seq, err := p.GetAccountSequence(ctx, testAddress, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(12), seq)

		num, err := p.GetAccountNumber(ctx, testAddress, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), num)

		account, err := p.GetAccount(ctx, testAddress, 0)
		require.NoError(t, err)
		assert.Equal(t, testAddress, account.BaseAccount.Address)

		// Unknown accounts: sequence defaults to 0, the account number is an error.
		seq, err = p.GetAccountSequence(ctx, "g1unknown", 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), seq)

		_, err = p.GetAccountNumber(ctx, "g1unknown", 0)
		assert.ErrorIs(t, err, provider.ErrAccountNotInitialized)

		balance, err = p.GetBalance(ctx, "g1unknown", "", 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), balance)
	})
}

func TestProvider_EstimateGas(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		ctx := context.Background()
		sample := &tx.Tx{Fee: &tx.Fee{GasWanted: 1, GasFee: "1ugnot"}, Memo: "estimate"}

		node.on(provider.ABCIQueryEndpoint, func(params []any) (any, *rpc.Error) {
			if params[1] != tx.EncodeBase64(sample) {
				return abciResult(nil, map[string]any{"@type": "/std.TxDecodeError"}, "bad tx"), nil
			}
			return abciResult(b64(`{"Error":null,"Data":null,"Events":null,"GasWanted":0,"GasUsed":1000}`), nil, ""), nil
		})

		gas, err := p.EstimateGas(ctx, sample)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), gas)
		assert.Equal(t, ".app/simulate", node.lastParams(provider.ABCIQueryEndpoint)[0])

		_, err = p.EstimateGas(ctx, &tx.Tx{Memo: "different"})
		assert.ErrorIs(t, err, provider.ErrTxDecode)

		var tmErr *provider.TM2Error
		require.True(t, errors.As(err, &tmErr))
		assert.Equal(t, "bad tx", tmErr.Log)
	})
}

func TestProvider_GasPrice(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		ctx := context.Background()

		node.result(provider.ABCIQueryEndpoint, abciResult(nil, map[string]any{"@type": "/std.UnknownRequestError"}, "unknown query path"))
		_, err := p.GetGasPrice(ctx)
		assert.ErrorIs(t, err, provider.ErrNotSupported)

		node.result(provider.ABCIQueryEndpoint, abciResult(b64(`{"gas":"1000","price":"2000ugnot"}`), nil, ""))
		price, err := p.GetGasPrice(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), price)
		assert.Equal(t, "auth/gasprice", node.lastParams(provider.ABCIQueryEndpoint)[0])
	})
}

func TestProvider_SendTransactionSync(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		ctx := context.Background()

		node.result(provider.BroadcastTxSyncEndpoint, map[string]any{
			"error": nil, "data": nil, "Log": "", "hash": "aGFzaA==",
		})
		res, err := p.SendTransactionSync(ctx, "dHg=")
		require.NoError(t, err)
		assert.Equal(t, "aGFzaA==", res.Hash)
		assert.Equal(t, []any{"dHg="}, node.lastParams(provider.BroadcastTxSyncEndpoint))

		hash, err := p.SendTransaction(ctx, "dHg=", provider.BroadcastSync)
		require.NoError(t, err)
		assert.Equal(t, "aGFzaA==", hash)

		node.result(provider.BroadcastTxSyncEndpoint, map[string]any{
			"error": map[string]any{"@type": "/std.UnauthorizedError"},
			"data":  nil,
			"Log":   "random error message",
			"hash":  "",
		})
		rejected, err := p.SendTransactionSync(ctx, "dHg=")
		require.Error(t, err)
		assert.Zero(t, rejected)
		assert.Equal(t, "signature is unauthorized", err.Error())
		assert.ErrorIs(t, err, provider.ErrUnauthorized)

		var tmErr *provider.TM2Error
		require.True(t, errors.As(err, &tmErr))
		assert.Equal(t, "random error message", tmErr.Log)
	})
}

func TestProvider_SendTransactionCommit(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		ctx := context.Background()
		commit := func(checkErr, deliverErr string) map[string]any {
			base := func(typeURL, log string) map[string]any {
				var e any
				if typeURL != "" {
					e = map[string]any{"@type": typeURL}
				}
				return map[string]any{"ResponseBase": map[string]any{"Error": e, "Log": log}}
			}
			return map[string]any{
				"check_tx":   base(checkErr, "check log"),
				"deliver_tx": base(deliverErr, "deliver log"),
				"hash":       "aGFzaA==",
				"height":     "9",
			}
		}

		node.result(provider.BroadcastTxCommitEndpoint, commit("", ""))
		res, err := p.SendTransactionCommit(ctx, "dHg=")
		require.NoError(t, err)
		assert.Equal(t, "9", res.Height)

		node.result(provider.BroadcastTxCommitEndpoint, commit("/std.InsufficientFeeError", "/std.OutOfGasError"))
		res, err = p.SendTransactionCommit(ctx, "dHg=")
		assert.ErrorIs(t, err, provider.ErrInsufficientFee)
		assert.Zero(t, res)
		var tmErr *provider.TM2Error
		require.True(t, errors.As(err, &tmErr))
		assert.Equal(t, "check log", tmErr.Log)
		assert.Equal(t, "aGFzaA==", tmErr.Hash)

		node.result(provider.BroadcastTxCommitEndpoint, commit("", "/std.OutOfGasError"))
		hash, err := p.SendTransaction(ctx, "dHg=", provider.BroadcastCommit)
		assert.ErrorIs(t, err, provider.ErrOutOfGas)
		assert.Empty(t, hash)
		require.True(t, errors.As(err, &tmErr))
		assert.Equal(t, "deliver log", tmErr.Log)
		assert.Equal(t, "aGFzaA==", tmErr.Hash)

		_, err = p.SendTransaction(ctx, "dHg=", provider.BroadcastMode("async"))
		assert.ErrorIs(t, err, provider.ErrUnknownBroadcastMode)
	})
}

func TestProvider_ProtocolError(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		node.on(provider.BlockEndpoint, func([]any) (any, *rpc.Error) {
			return nil, &rpc.Error{Code: -32603, Message: "Internal error", Data: []byte(`"height must be less than or equal to the current blockchain height"`)}
		})

		_, err := p.GetBlock(context.Background(), 1000)
		var rpcErr *rpc.Error
		require.True(t, errors.As(err, &rpcErr))
		assert.Equal(t, "Internal error", err.Error())
		assert.Contains(t, rpcErr.DataString(), "current blockchain height")

		_, err = p.GetNetwork(context.Background())
		require.True(t, errors.As(err, &rpcErr))
		assert.Equal(t, -32601, rpcErr.Code)
	})
}

func TestProvider_WaitForTransaction(t *testing.T) {
	t.Parallel()

	forEachTransport(t, func(t *testing.T, node *fakeNode, p testedProvider) {
		want := &tx.Tx{Fee: &tx.Fee{GasWanted: 50_000, GasFee: "1ugnot"}, Memo: "wait for me"}
		raw := tx.Encode(want)

		node.result(provider.StatusEndpoint, statusResult("dev", 3))
		node.on(provider.BlockEndpoint, func(params []any) (any, *rpc.Error) {
			var txs []string
			if params[0] == "3" {
				txs = []string{base64.StdEncoding.EncodeToString(raw)}
			}
			return map[string]any{"block": map[string]any{"data": map[string]any{"txs": txs}}}, nil
		})

		got, err := p.WaitForTransaction(context.Background(), tx.HashBase64(raw),
			provider.WithFromHeight(1), provider.WithPollInterval(10*time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestWSProvider_CloseDuringHandshake(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	node.result(provider.StatusEndpoint, statusResult("dev", 7))
	server := node.slowWSServer(t, 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := rpc.DefaultWebsocketDialerConfig
	cfg.OpenPollInterval = 20 * time.Millisecond
	p := provider.NewWSProvider(ctx, "ws://"+server.Listener.Addr().String(), provider.WithDialerConfig(cfg))

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.WaitConnected(ctx), rpc.ErrConnectionClosed)

	_, err := p.GetBlockNumber(ctx)
	assert.ErrorIs(t, err, rpc.ErrConnectionClosed)
}
