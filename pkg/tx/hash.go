package tx

import (
	"crypto/sha256"
	"encoding/base64"
)

// Hash returns the SHA-256 digest of the encoded transaction.
func Hash(encoded []byte) [sha256.Size]byte {
	return sha256.Sum256(encoded)
}

// HashBase64 returns Hash in standard base64, the form nodes report and
// WaitForTransaction compares against.
func HashBase64(encoded []byte) string {
	h := Hash(encoded)
	return base64.StdEncoding.EncodeToString(h[:])
}

// EncodeBase64 encodes t and returns it in standard base64, ready for broadcast.
func EncodeBase64(t *Tx) string {
	return base64.StdEncoding.EncodeToString(Encode(t))
}
