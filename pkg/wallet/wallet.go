package wallet

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gnolang/tm2-go-client/pkg/log"
	"github.com/gnolang/tm2-go-client/pkg/provider"
	"github.com/gnolang/tm2-go-client/pkg/sign"
	"github.com/gnolang/tm2-go-client/pkg/tx"
)

var (
	ErrProviderNotConnected = errors.New("provider not connected")
	ErrInvalidFee           = errors.New("invalid transaction fee provided")
	ErrNilTransaction       = errors.New("nil transaction")
)

// Wallet is a single account: a Signer and, once connected, the Provider it
// reads from and broadcasts to.
type Wallet struct {
	signer   sign.Signer
	provider provider.Provider
}

// New wraps signer.
func New(signer sign.Signer) *Wallet {
	return &Wallet{signer: signer}
}

// FromMnemonic derives the account at index from a BIP-39 mnemonic.
func FromMnemonic(mnemonic string, index uint32, prefix string) (*Wallet, error) {
	signer, err := sign.NewSignerFromMnemonic(mnemonic, index, prefix)
	if err != nil {
		return nil, err
	}
	return New(signer), nil
}

// FromPrivateKey wraps a raw 32 byte secp256k1 key.
func FromPrivateKey(key []byte, prefix string) (*Wallet, error) {
	signer, err := sign.NewSecp256k1Signer(key, prefix)
	if err != nil {
		return nil, err
	}
	return New(signer), nil
}

// CreateRandom creates a wallet from a freshly generated mnemonic, returned
// alongside so the account can be recovered.
func CreateRandom(prefix string) (*Wallet, string, error) {
	mnemonic, err := sign.NewMnemonic()
	if err != nil {
		return nil, "", err
	}
	w, err := FromMnemonic(mnemonic, 0, prefix)
	if err != nil {
		return nil, "", err
	}
	return w, mnemonic, nil
}

// Connect attaches p; later calls read from and broadcast to it.
func (w *Wallet) Connect(p provider.Provider) {
	w.provider = p
}

func (w *Wallet) Provider() provider.Provider { return w.provider }

func (w *Wallet) Signer() sign.Signer { return w.signer }

// Address returns the bech32 address of the account.
func (w *Wallet) Address() string {
	return w.signer.PublicKey().Address().String()
}

func (w *Wallet) connected() (provider.Provider, error) {
	if w.provider == nil {
		return nil, ErrProviderNotConnected
	}
	return w.provider, nil
}

// GetBalance returns the latest balance in denom, provider.DefaultDenomination when empty.
func (w *Wallet) GetBalance(ctx context.Context, denom string) (uint64, error) {
	p, err := w.connected()
	if err != nil {
		return 0, err
	}
	return p.GetBalance(ctx, w.Address(), denom, 0)
}

func (w *Wallet) GetAccountSequence(ctx context.Context) (uint64, error) {
	p, err := w.connected()
	if err != nil {
		return 0, err
	}
	return p.GetAccountSequence(ctx, w.Address(), 0)
}

func (w *Wallet) GetAccountNumber(ctx context.Context) (uint64, error) {
	p, err := w.connected()
	if err != nil {
		return 0, err
	}
	return p.GetAccountNumber(ctx, w.Address(), 0)
}

func (w *Wallet) GetGasPrice(ctx context.Context) (uint64, error) {
	p, err := w.connected()
	if err != nil {
		return 0, err
	}
	return p.GetGasPrice(ctx)
}

func (w *Wallet) EstimateGas(ctx context.Context, t *tx.Tx) (int64, error) {
	p, err := w.connected()
	if err != nil {
		return 0, err
	}
	return p.EstimateGas(ctx, t)
}

// SignOptions overrides values SignTransaction otherwise fetches from the chain.
type SignOptions struct {
	ChainID       string
	AccountNumber *uint64
	Sequence      *uint64
}

// SignTransaction signs t and returns a copy with the signature appended.
// decode expands the packed messages into their JSON form for the sign bytes.
func (w *Wallet) SignTransaction(ctx context.Context, t *tx.Tx, decode MessageDecoder, opts SignOptions) (*tx.Tx, error) {
	p, err := w.connected()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNilTransaction
	}
	if t.Fee == nil {
		return nil, ErrInvalidFee
	}

	lg := log.FromContext(ctx).WithName("wallet").WithKV("address", w.Address())

	chainID := opts.ChainID
	if chainID == "" {
		status, err := p.GetStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chain id: %w", err)
		}
		chainID = status.NodeInfo.Network
	}

	var accountNumber, sequence string
	if opts.AccountNumber != nil {
		accountNumber = strconv.FormatUint(*opts.AccountNumber, 10)
	}
	if opts.Sequence != nil {
		sequence = strconv.FormatUint(*opts.Sequence, 10)
	}
	if opts.AccountNumber == nil || opts.Sequence == nil {
		account, err := p.GetAccount(ctx, w.Address(), 0)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch account: %w", err)
		}
		if opts.AccountNumber == nil {
			accountNumber = account.BaseAccount.AccountNumber
		}
		if opts.Sequence == nil {
			sequence = account.BaseAccount.Sequence
		}
	}

	msgs, err := decode(t.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	signBytes, err := SignBytes(SignPayload{
		ChainID:       chainID,
		AccountNumber: accountNumber,
		Sequence:      sequence,
		Fee:           *t.Fee,
		Msgs:          msgs,
		Memo:          t.Memo,
	})
	if err != nil {
		return nil, err
	}

	sig, err := w.signer.Sign(signBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	lg.Debug("transaction signed", "chain_id", chainID, "account_number", accountNumber, "sequence", sequence)

	signed := t.AddSignature(tx.Signature{
		PubKey:    tx.NewSecp256k1PubKey(w.signer.PublicKey().Bytes()),
		Signature: sig,
	})
	return &signed, nil
}

// SendTransaction broadcasts the signed t in mode and returns its hash.
func (w *Wallet) SendTransaction(ctx context.Context, t *tx.Tx, mode provider.BroadcastMode) (string, error) {
	p, err := w.connected()
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", ErrNilTransaction
	}
	return p.SendTransaction(ctx, tx.EncodeBase64(t), mode)
}
