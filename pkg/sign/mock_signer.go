package sign

import (
	"bytes"
	"fmt"
)

var _ Signer = (*MockSigner)(nil)

// MockSigner signs without cryptography: a signature is the signed data
// followed by "-signed-by-<id>". Useful where tests need to read what was signed.
type MockSigner struct {
	publicKey *MockPublicKey
}

// NewMockSigner returns a signer whose key and address are both id.
func NewMockSigner(id string) *MockSigner {
	return &MockSigner{publicKey: NewMockPublicKey(id)}
}

func (m *MockSigner) Sign(data []byte) (Signature, error) {
	sig := append(bytes.Clone(data), fmt.Sprintf("-signed-by-%s", m.publicKey.id)...)
	return sig, nil
}

func (m *MockSigner) PublicKey() PublicKey {
	return m.publicKey
}

var _ PublicKey = (*MockPublicKey)(nil)
var _ Verifier = (*MockPublicKey)(nil)

// MockPublicKey uses its id as key bytes and as address.
type MockPublicKey struct {
	id string
}

func NewMockPublicKey(id string) *MockPublicKey {
	return &MockPublicKey{id: id}
}

func (m *MockPublicKey) Address() Address {
	return NewMockAddress(m.id)
}

func (m *MockPublicKey) Bytes() []byte {
	return []byte(m.id)
}

// Verify accepts exactly the signatures MockSigner produces for this ID.
func (m *MockPublicKey) Verify(data []byte, signature Signature) bool {
	return bytes.Equal(signature, append(bytes.Clone(data), "-signed-by-"+m.id...))
}

var _ Address = (*MockAddress)(nil)

// MockAddress is a plain string address.
type MockAddress struct {
	id string
}

func NewMockAddress(id string) *MockAddress {
	return &MockAddress{id: id}
}

func (m *MockAddress) String() string {
	return m.id
}

// Equals compares string forms, so it matches any Address with the same text.
func (m *MockAddress) Equals(other Address) bool {
	return m.id == other.String()
}
