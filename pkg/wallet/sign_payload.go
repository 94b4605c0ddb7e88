package wallet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gnolang/tm2-go-client/pkg/tx"
)

// MessageDecoder expands packed transaction messages into values whose JSON
// form is what the node signs over.
type MessageDecoder func(msgs []tx.Message) ([]any, error)

// SignPayload holds everything the signature commits to.
type SignPayload struct {
	ChainID       string
	AccountNumber string
	Sequence      string
	Fee           tx.Fee
	Msgs          []any
	Memo          string
}

// SignBytes renders p as JSON with object keys sorted at every level, the
// form the node verifies signatures against.
func SignBytes(p SignPayload) ([]byte, error) {
	msgs := p.Msgs
	if msgs == nil {
		msgs = []any{}
	}

	doc := map[string]any{
		"chain_id":       p.ChainID,
		"account_number": p.AccountNumber,
		"sequence":       p.Sequence,
		"fee": map[string]any{
			"gas_fee":    p.Fee.GasFee,
			"gas_wanted": strconv.FormatInt(p.Fee.GasWanted, 10),
		},
		"msgs": msgs,
		"memo": p.Memo,
	}

	return sortedJSON(doc)
}

// sortedJSON round-trips v through a generic tree; encoding/json writes map
// keys in sorted order, struct fields included once they became map keys.
func sortedJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to encode sign payload: %w", err)
	}

	return json.Marshal(tree)
}
