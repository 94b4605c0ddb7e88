package sign

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Signer is an interface for a chain-agnostic signer.
type Signer interface {
	PublicKey() PublicKey                // Public key associated with this signer.
	Sign(data []byte) (Signature, error) // Sign generates a signature over the given sign bytes.
}

// Verifier is implemented by public keys able to check their own signatures.
type Verifier interface {
	Verify(data []byte, signature Signature) bool
}

// PublicKey is an interface for a chain-agnostic public key.
type PublicKey interface {
	Address() Address
	Bytes() []byte
}

// Address is an interface for a chain-specific address.
type Address interface {
	fmt.Stringer // All addresses must have a string representation.

	// Equals returns true if this address equals the other address.
	Equals(other Address) bool
}

// Signature is a generic byte slice representing a cryptographic signature.
type Signature []byte

// Type represents the signature scheme.
type Type uint8

const (
	TypeSecp256k1 Type = iota
	TypeUnknown        = 255
)

// String returns the string representation of the scheme.
func (t Type) String() string {
	switch t {
	case TypeSecp256k1:
		return "Secp256k1"
	default:
		return "Unknown"
	}
}

// Type guesses the signature scheme from its length.
func (s Signature) Type() Type {
	if len(s) == 64 {
		// r: 32 bytes, s: 32 bytes, no recovery id
		return TypeSecp256k1
	}
	return TypeUnknown
}

// MarshalJSON implements the json.Marshaler interface, encoding the signature as a hex string.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	decoded, err := hexutil.Decode(hexStr)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// String implements the fmt.Stringer interface
func (s Signature) String() string {
	return hexutil.Encode(s)
}

// Verify checks signature against data when pub implements Verifier.
func Verify(pub PublicKey, data []byte, signature Signature) (bool, error) {
	v, ok := pub.(Verifier)
	if !ok {
		return false, fmt.Errorf("public key %T cannot verify signatures", pub)
	}
	return v.Verify(data, signature), nil
}
