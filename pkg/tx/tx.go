package tx

// Secp256k1PubKeyType is the type url of a secp256k1 public key.
const Secp256k1PubKeyType = "/tm.PubKeySecp256k1"

// Tx is a Tendermint2 transaction.
type Tx struct {
	Messages   []Message   `json:"messages"`
	Fee        *Fee        `json:"fee"`
	Signatures []Signature `json:"signatures"`
	Memo       string      `json:"memo"`
}

// Message is a concrete message packed with its type url.
type Message struct {
	TypeURL string `json:"type_url"`
	Value   []byte `json:"value"`
}

// Fee describes the gas limit and the fee paid for it. GasFee has the form
// <amount><denomination>, e.g. "1000000ugnot".
type Fee struct {
	GasWanted int64  `json:"gas_wanted"`
	GasFee    string `json:"gas_fee"`
}

// Signature pairs a signature with the public key that produced it.
type Signature struct {
	PubKey    *PubKey `json:"pub_key"`
	Signature []byte  `json:"signature"`
}

// PubKey is a public key packed with its type url.
type PubKey struct {
	Type  string `json:"type_url"`
	Value []byte `json:"value"`
}

// NewSecp256k1PubKey packs a compressed secp256k1 key.
func NewSecp256k1PubKey(compressed []byte) *PubKey {
	return &PubKey{
		Type:  Secp256k1PubKeyType,
		Value: EncodePubKeySecp256k1(compressed),
	}
}

// AddSignature returns a shallow copy of t with sig appended.
func (t Tx) AddSignature(sig Signature) Tx {
	sigs := make([]Signature, 0, len(t.Signatures)+1)
	sigs = append(sigs, t.Signatures...)
	t.Signatures = append(sigs, sig)
	return t
}
