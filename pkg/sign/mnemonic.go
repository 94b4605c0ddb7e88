package sign

import (
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// coinType is the registered SLIP-44 coin type used by Tendermint chains.
const coinType = 118

// NewMnemonic generates a 24 word BIP-39 mnemonic from 256 bits of entropy.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// DerivePrivateKey derives the secp256k1 key at m/44'/118'/0'/0/index.
func DerivePrivateKey(mnemonic string, index uint32) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}

	path := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + coinType,
		bip32.FirstHardenedChild,
		0,
		index,
	}
	for _, i := range path {
		if key, err = key.NewChildKey(i); err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", i, err)
		}
	}
	// Scalars with leading zero bytes come back short.
	priv := make([]byte, 32)
	copy(priv[32-len(key.Key):], key.Key)
	return priv, nil
}

// NewSignerFromMnemonic derives the key at index and wraps it in a signer.
func NewSignerFromMnemonic(mnemonic string, index uint32, prefix string) (*Secp256k1Signer, error) {
	key, err := DerivePrivateKey(mnemonic, index)
	if err != nil {
		return nil, err
	}
	return NewSecp256k1Signer(key, prefix)
}
