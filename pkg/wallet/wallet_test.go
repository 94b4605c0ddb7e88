package wallet_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tm2-go-client/pkg/provider"
	"github.com/gnolang/tm2-go-client/pkg/sign"
	"github.com/gnolang/tm2-go-client/pkg/tx"
	"github.com/gnolang/tm2-go-client/pkg/wallet"
)

const (
	testMnemonic = "source bonus chronic canvas draft south burst lottery vacant surface solve popular case indicate oppose farm nothing bullet exhibit title speed wink action roast"
	testAddress  = "g1jg8mtutu9khhfwc4nxmuhcpftf0pajdhfvsqf5"
)

// stubProvider answers the calls a wallet makes; anything else panics
// through the nil embedded interface.
type stubProvider struct {
	provider.Provider

	network       string
	accountNumber string
	sequence      string
	balance       uint64

	statusCalls  int
	accountCalls int
	sent         []string
	sentModes    []provider.BroadcastMode
}

func (s *stubProvider) GetStatus(context.Context) (provider.Status, error) {
	s.statusCalls++
	var st provider.Status
	st.NodeInfo.Network = s.network
	return st, nil
}

func (s *stubProvider) GetAccount(_ context.Context, address string, _ int64) (provider.ABCIAccount, error) {
	s.accountCalls++
	var acc provider.ABCIAccount
	acc.BaseAccount.Address = address
	acc.BaseAccount.AccountNumber = s.accountNumber
	acc.BaseAccount.Sequence = s.sequence
	return acc, nil
}

func (s *stubProvider) GetBalance(_ context.Context, address, denom string, _ int64) (uint64, error) {
	if address != testAddress || denom != "ugnot" {
		return 0, nil
	}
	return s.balance, nil
}

func (s *stubProvider) SendTransaction(_ context.Context, encodedTx string, mode provider.BroadcastMode) (string, error) {
	s.sent = append(s.sent, encodedTx)
	s.sentModes = append(s.sentModes, mode)
	return "hash", nil
}

type sendMsg struct {
	To     string `json:"to_address"`
	Amount string `json:"amount"`
}

func decodeSend(msgs []tx.Message) ([]any, error) {
	out := make([]any, 0, len(msgs))
	for _, m := range msgs {
		var msg sendMsg
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func unsignedTx(t *testing.T) *tx.Tx {
	t.Helper()

	value, err := json.Marshal(sendMsg{To: "g1w508d6qejxtdg4y5r3zarvary0c5xw7kfptewu", Amount: "10ugnot"})
	require.NoError(t, err)

	return &tx.Tx{
		Messages: []tx.Message{{TypeURL: "/bank.MsgSend", Value: value}},
		Fee:      &tx.Fee{GasWanted: 100000, GasFee: "1000ugnot"},
		Memo:     "hi & bye",
	}
}

func newWallet(t *testing.T) *wallet.Wallet {
	t.Helper()

	w, err := wallet.FromMnemonic(testMnemonic, 0, "")
	require.NoError(t, err)
	return w
}

func TestWallet_Constructors(t *testing.T) {
	t.Parallel()

	w := newWallet(t)
	assert.Equal(t, testAddress, w.Address())

	second, err := wallet.FromMnemonic(testMnemonic, 1, sign.DefaultAddressPrefix)
	require.NoError(t, err)
	assert.Equal(t, "g1kcdd3n0d472g2p5l8svyg9t0wq6h5857nq992f", second.Address())

	key := make([]byte, 32)
	key[31] = 1
	fromKey, err := wallet.FromPrivateKey(key, "g")
	require.NoError(t, err)
	assert.Equal(t, "g1w508d6qejxtdg4y5r3zarvary0c5xw7kfptewu", fromKey.Address())

	random, mnemonic, err := wallet.CreateRandom("g")
	require.NoError(t, err)
	restored, err := wallet.FromMnemonic(mnemonic, 0, "g")
	require.NoError(t, err)
	assert.Equal(t, random.Address(), restored.Address())

	_, err = wallet.FromMnemonic("not a mnemonic", 0, "g")
	assert.ErrorIs(t, err, sign.ErrInvalidMnemonic)
}

func TestWallet_NotConnected(t *testing.T) {
	t.Parallel()

	w := newWallet(t)
	ctx := context.Background()

	_, err := w.GetBalance(ctx, "ugnot")
	assert.ErrorIs(t, err, wallet.ErrProviderNotConnected)
	_, err = w.GetAccountSequence(ctx)
	assert.ErrorIs(t, err, wallet.ErrProviderNotConnected)
	_, err = w.GetAccountNumber(ctx)
	assert.ErrorIs(t, err, wallet.ErrProviderNotConnected)
	_, err = w.GetGasPrice(ctx)
	assert.ErrorIs(t, err, wallet.ErrProviderNotConnected)
	_, err = w.EstimateGas(ctx, unsignedTx(t))
	assert.ErrorIs(t, err, wallet.ErrProviderNotConnected)
	_, err = w.SignTransaction(ctx, unsignedTx(t), decodeSend, wallet.SignOptions{})
	assert.ErrorIs(t, err, wallet.ErrProviderNotConnected)
	_, err = w.SendTransaction(ctx, unsignedTx(t), provider.BroadcastSync)
	assert.ErrorIs(t, err, wallet.ErrProviderNotConnected)
}

func TestWallet_GetBalance(t *testing.T) {
	t.Parallel()

	w := newWallet(t)
	w.Connect(&stubProvider{balance: 42})

	balance, err := w.GetBalance(context.Background(), "ugnot")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), balance)
}

func TestSignBytes(t *testing.T) {
	t.Parallel()

	raw, err := wallet.SignBytes(wallet.SignPayload{
		ChainID:       "dev",
		AccountNumber: "7",
		Sequence:      "12",
		Fee:           tx.Fee{GasWanted: 100, GasFee: "1ugnot"},
		Msgs:          []any{sendMsg{To: "g1abc", Amount: "1ugnot"}},
		Memo:          "a<b",
	})
	require.NoError(t, err)

	expected := `{"account_number":"7","chain_id":"dev","fee":{"gas_fee":"1ugnot","gas_wanted":"100"},` +
		`"memo":"a\u003cb","msgs":[{"amount":"1ugnot","to_address":"g1abc"}],"sequence":"12"}`
	assert.Equal(t, expected, string(raw))

	empty, err := wallet.SignBytes(wallet.SignPayload{})
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"msgs":[]`)
}

func TestWallet_SignTransaction(t *testing.T) {
	t.Parallel()

	t.Run("fetches chain id and account", func(t *testing.T) {
		t.Parallel()

		stub := &stubProvider{network: "dev", accountNumber: "7", sequence: "12"}
		w := newWallet(t)
		w.Connect(stub)

		unsigned := unsignedTx(t)
		signed, err := w.SignTransaction(context.Background(), unsigned, decodeSend, wallet.SignOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, stub.statusCalls)
		assert.Equal(t, 1, stub.accountCalls)

		assert.Empty(t, unsigned.Signatures, "input must not be modified")
		require.Len(t, signed.Signatures, 1)

		sig := signed.Signatures[0]
		require.NotNil(t, sig.PubKey)
		assert.Equal(t, tx.Secp256k1PubKeyType, sig.PubKey.Type)
		key, err := tx.DecodePubKeySecp256k1(sig.PubKey.Value)
		require.NoError(t, err)
		assert.Equal(t, w.Signer().PublicKey().Bytes(), key)

		msgs, err := decodeSend(unsigned.Messages)
		require.NoError(t, err)
		signBytes, err := wallet.SignBytes(wallet.SignPayload{
			ChainID:       "dev",
			AccountNumber: "7",
			Sequence:      "12",
			Fee:           *unsigned.Fee,
			Msgs:          msgs,
			Memo:          unsigned.Memo,
		})
		require.NoError(t, err)

		ok, err := sign.Verify(w.Signer().PublicKey(), signBytes, sign.Signature(sig.Signature))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("explicit options skip lookups", func(t *testing.T) {
		t.Parallel()

		stub := &stubProvider{}
		w := newWallet(t)
		w.Connect(stub)

		accountNumber, sequence := uint64(3), uint64(0)
		signed, err := w.SignTransaction(context.Background(), unsignedTx(t), decodeSend, wallet.SignOptions{
			ChainID:       "test",
			AccountNumber: &accountNumber,
			Sequence:      &sequence,
		})
		require.NoError(t, err)
		require.Len(t, signed.Signatures, 1)
		assert.Zero(t, stub.statusCalls)
		assert.Zero(t, stub.accountCalls)
	})

	t.Run("missing fee", func(t *testing.T) {
		t.Parallel()

		w := newWallet(t)
		w.Connect(&stubProvider{})

		unsigned := unsignedTx(t)
		unsigned.Fee = nil
		_, err := w.SignTransaction(context.Background(), unsigned, decodeSend, wallet.SignOptions{})
		assert.ErrorIs(t, err, wallet.ErrInvalidFee)
	})

	t.Run("decoder failure", func(t *testing.T) {
		t.Parallel()

		w := newWallet(t)
		w.Connect(&stubProvider{network: "dev", accountNumber: "1", sequence: "1"})

		boom := errors.New("unknown message type")
		_, err := w.SignTransaction(context.Background(), unsignedTx(t), func([]tx.Message) ([]any, error) {
			return nil, boom
		}, wallet.SignOptions{})
		assert.ErrorIs(t, err, boom)
	})
}

func TestWallet_SendTransaction(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{network: "dev", accountNumber: "7", sequence: "12"}
	w := newWallet(t)
	w.Connect(stub)

	signed, err := w.SignTransaction(context.Background(), unsignedTx(t), decodeSend, wallet.SignOptions{})
	require.NoError(t, err)

	hash, err := w.SendTransaction(context.Background(), signed, provider.BroadcastCommit)
	require.NoError(t, err)
	assert.Equal(t, "hash", hash)

	require.Len(t, stub.sent, 1)
	assert.Equal(t, tx.EncodeBase64(signed), stub.sent[0])
	assert.Equal(t, provider.BroadcastCommit, stub.sentModes[0])

	decoded, err := tx.Decode(tx.Encode(signed))
	require.NoError(t, err)
	assert.Equal(t, signed.Memo, decoded.Memo)
	require.Len(t, decoded.Signatures, 1)
}
