package sign

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// DefaultAddressPrefix is the bech32 human readable part of gno.land addresses.
const DefaultAddressPrefix = "g"

var ErrInvalidAddress = errors.New("invalid bech32 address")

// Ensure our types implement the interfaces at compile time.
var _ Signer = (*Secp256k1Signer)(nil)
var _ PublicKey = (*Secp256k1PublicKey)(nil)
var _ Verifier = (*Secp256k1PublicKey)(nil)
var _ Address = (*Bech32Address)(nil)

// Bech32Address is the RIPEMD160(SHA256(pubkey)) hash of a compressed
// public key, rendered in bech32 with a human readable prefix.
type Bech32Address struct {
	prefix string
	hash   [20]byte
}

// NewBech32Address wraps a 20 byte key hash.
func NewBech32Address(prefix string, hash []byte) (Bech32Address, error) {
	if len(hash) != 20 {
		return Bech32Address{}, fmt.Errorf("%w: hash must be 20 bytes, got %d", ErrInvalidAddress, len(hash))
	}
	a := Bech32Address{prefix: prefix}
	copy(a.hash[:], hash)
	return a, nil
}

// ParseBech32Address decodes an address such as "g1jg8mtutu9khhfwc4nxmuhcpftf0pajdhfvsqf5".
func ParseBech32Address(s string) (Bech32Address, error) {
	prefix, data, err := bech32.Decode(s)
	if err != nil {
		return Bech32Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	hash, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Bech32Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return NewBech32Address(prefix, hash)
}

func (a Bech32Address) String() string {
	data, err := bech32.ConvertBits(a.hash[:], 8, 5, true)
	if err != nil {
		return ""
	}
	s, err := bech32.Encode(a.prefix, data)
	if err != nil {
		return ""
	}
	return s
}

// Bytes returns the 20 byte key hash.
func (a Bech32Address) Bytes() []byte { return a.hash[:] }

// Equals returns true if this address equals the other address.
func (a Bech32Address) Equals(other Address) bool {
	if otherAddr, ok := other.(Bech32Address); ok {
		return a == otherAddr
	}
	return a.String() == other.String()
}

// Secp256k1PublicKey is a compressed secp256k1 public key bound to an
// address prefix.
type Secp256k1PublicKey struct {
	compressed []byte
	prefix     string
}

// NewSecp256k1PublicKey parses a compressed (33 byte) or uncompressed
// (65 byte) public key.
func NewSecp256k1PublicKey(raw []byte, prefix string) (Secp256k1PublicKey, error) {
	var (
		pub *ecdsa.PublicKey
		err error
	)
	switch len(raw) {
	case 33:
		pub, err = ethcrypto.DecompressPubkey(raw)
	case 65:
		pub, err = ethcrypto.UnmarshalPubkey(raw)
	default:
		err = fmt.Errorf("unexpected length %d", len(raw))
	}
	if err != nil {
		return Secp256k1PublicKey{}, fmt.Errorf("failed to parse public key: %w", err)
	}
	return Secp256k1PublicKey{compressed: ethcrypto.CompressPubkey(pub), prefix: prefix}, nil
}

func (p Secp256k1PublicKey) Address() Address {
	a, _ := NewBech32Address(p.prefix, btcutil.Hash160(p.compressed))
	return a
}

// Bytes returns the 33 byte compressed key.
func (p Secp256k1PublicKey) Bytes() []byte { return bytes.Clone(p.compressed) }

// Verify checks a 64 byte signature over the SHA-256 of data.
func (p Secp256k1PublicKey) Verify(data []byte, signature Signature) bool {
	if len(signature) != 64 {
		return false
	}
	digest := sha256.Sum256(data)
	return ethcrypto.VerifySignature(p.compressed, digest[:], signature)
}

// Secp256k1Signer signs with a raw secp256k1 private key.
type Secp256k1Signer struct {
	privateKey *ecdsa.PrivateKey
	publicKey  Secp256k1PublicKey
}

func (s *Secp256k1Signer) PublicKey() PublicKey { return s.publicKey }

// Sign hashes data with SHA-256 and returns the 64 byte r||s signature.
func (s *Secp256k1Signer) Sign(data []byte) (Signature, error) {
	digest := sha256.Sum256(data)
	sig, err := ethcrypto.Sign(digest[:], s.privateKey)
	if err != nil {
		return nil, err
	}
	// Drop the recovery id; nodes verify r||s only.
	return Signature(sig[:64]), nil
}

// NewSecp256k1Signer creates a signer from a 32 byte private key. An empty
// prefix selects DefaultAddressPrefix.
func NewSecp256k1Signer(privateKey []byte, prefix string) (*Secp256k1Signer, error) {
	if prefix == "" {
		prefix = DefaultAddressPrefix
	}
	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("could not parse secp256k1 private key: %w", err)
	}
	return &Secp256k1Signer{
		privateKey: key,
		publicKey: Secp256k1PublicKey{
			compressed: ethcrypto.CompressPubkey(&key.PublicKey),
			prefix:     prefix,
		},
	}, nil
}

// NewSecp256k1SignerFromHex creates a signer from a hex-encoded private key,
// with or without the 0x prefix.
func NewSecp256k1SignerFromHex(privateKeyHex, prefix string) (*Secp256k1Signer, error) {
	raw, err := hexutil.Decode("0x" + strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not decode private key: %w", err)
	}
	return NewSecp256k1Signer(raw, prefix)
}
