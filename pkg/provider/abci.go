package provider

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ABCIResponse is the result of abci_query.
type ABCIResponse struct {
	Response struct {
		ResponseBase ABCIResponseBase `json:"ResponseBase"`
		Key          *string          `json:"Key"`
		Value        *string          `json:"Value"`
		Proof        *MerkleProof     `json:"Proof"`
		Height       string           `json:"Height"`
	} `json:"response"`
}

// ABCIResponseBase is shared by every ABCI response. Data is base64.
type ABCIResponseBase struct {
	Error  map[string]json.RawMessage `json:"Error"`
	Data   *string                    `json:"Data"`
	Events json.RawMessage            `json:"Events"`
	Log    string                     `json:"Log"`
	Info   string                     `json:"Info"`
}

type MerkleProof struct {
	Ops []struct {
		Type string  `json:"type"`
		Key  *string `json:"key"`
		Data *string `json:"data"`
	} `json:"ops"`
}

// ABCIAccount is the payload of an auth/accounts query.
type ABCIAccount struct {
	BaseAccount struct {
		Address   string `json:"address"`
		Coins     string `json:"coins"`
		PublicKey *struct {
			Type  string `json:"@type"`
			Value string `json:"value"`
		} `json:"public_key"`
		AccountNumber string `json:"account_number"`
		Sequence      string `json:"sequence"`
	} `json:"BaseAccount"`
}

// SimulateResult is the payload of a .app/simulate query.
type SimulateResult struct {
	Error     json.RawMessage `json:"Error"`
	Data      *string         `json:"Data"`
	Events    json.RawMessage `json:"Events"`
	GasWanted json.Number     `json:"GasWanted"`
	GasUsed   json.Number     `json:"GasUsed"`
}

// ParseABCI decodes base64 data and unmarshals the JSON it holds into v.
func ParseABCI(data string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnableToParseResponse, err)
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrUnableToParseResponse
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrUnableToParseResponse, err)
	}
	return nil
}

// ExtractBalance finds the amount of denom in a bank/balances payload, whose
// decoded form is a quoted list such as "5gnot,100ugnot". Absent data and
// missing denominations yield 0.
func ExtractBalance(data *string, denom string) (uint64, error) {
	if data == nil || *data == "" {
		return 0, nil
	}

	raw, err := base64.StdEncoding.DecodeString(*data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnableToParseResponse, err)
	}

	pattern, err := regexp.Compile(`^(\d+)` + regexp.QuoteMeta(denom) + `$`)
	if err != nil {
		return 0, err
	}

	for _, balance := range strings.Split(strings.ReplaceAll(string(raw), `"`, ""), ",") {
		match := pattern.FindStringSubmatch(balance)
		if match == nil {
			continue
		}
		amount, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidBalance, err)
		}
		return amount, nil
	}
	return 0, nil
}

// ExtractSequence returns the account sequence, or 0 when the account is
// absent or cannot be parsed.
func ExtractSequence(data *string) uint64 {
	if data == nil || *data == "" {
		return 0
	}

	var account ABCIAccount
	if err := ParseABCI(*data, &account); err != nil {
		return 0
	}
	seq, err := strconv.ParseUint(account.BaseAccount.Sequence, 10, 64)
	if err != nil {
		return 0
	}
	return seq
}

// ExtractAccountNumber returns the account number. Unlike the sequence, an
// absent or unparseable account is an error.
func ExtractAccountNumber(data *string) (uint64, error) {
	account, err := ExtractAccount(data)
	if err != nil {
		return 0, err
	}
	num, err := strconv.ParseUint(account.BaseAccount.AccountNumber, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAccountNotInitialized, err)
	}
	return num, nil
}

// ExtractAccount parses an auth/accounts payload.
func ExtractAccount(data *string) (ABCIAccount, error) {
	var account ABCIAccount
	if data == nil || *data == "" {
		return account, ErrAccountNotInitialized
	}
	if err := ParseABCI(*data, &account); err != nil {
		return account, fmt.Errorf("%w: %w", ErrAccountNotInitialized, err)
	}
	return account, nil
}

// ExtractSimulateResult parses a .app/simulate payload.
func ExtractSimulateResult(data *string) (SimulateResult, error) {
	var res SimulateResult
	if data == nil || *data == "" {
		return res, ErrABCIDataNotInitialized
	}
	if err := ParseABCI(*data, &res); err != nil {
		return res, err
	}
	return res, nil
}

// Err classifies the simulation failure, if any. The node reports it either
// as an error type identifier or as an amino JSON error object.
func (r SimulateResult) Err() error {
	raw := bytes.TrimSpace(r.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var typeURL string
	if err := json.Unmarshal(raw, &typeURL); err == nil {
		if typeURL == "" {
			return nil
		}
		return NewTM2Error(typeURL, "")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("%w: simulate error: %w", ErrUnableToParseResponse, err)
	}
	return classifyABCIError(obj, "")
}

// GasPrice is the minimum fee the node accepts: Amount of Denom for every
// Gas units.
type GasPrice struct {
	Gas    int64
	Amount uint64
	Denom  string
}

var coinPattern = regexp.MustCompile(`^(\d+)([a-zA-Z][a-zA-Z0-9/:._-]*)$`)

// ParseGasPrice decodes an auth/gasprice payload. Both the bare coin form
// "<amount><denom>" and the object form {"gas":..,"price":"<amount><denom>"}
// are accepted; the bare form prices a single unit of gas.
func ParseGasPrice(data string) (GasPrice, error) {
	var raw json.RawMessage
	if err := ParseABCI(data, &raw); err != nil {
		return GasPrice{}, err
	}

	price := GasPrice{Gas: 1}
	var coin string
	if err := json.Unmarshal(raw, &coin); err != nil {
		var obj struct {
			Gas   json.Number `json:"gas"`
			Price string      `json:"price"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return GasPrice{}, fmt.Errorf("%w: gas price: %w", ErrUnableToParseResponse, err)
		}
		if obj.Gas != "" {
			gas, err := obj.Gas.Int64()
			if err != nil {
				return GasPrice{}, fmt.Errorf("%w: gas price: %w", ErrUnableToParseResponse, err)
			}
			price.Gas = gas
		}
		coin = obj.Price
	}

	match := coinPattern.FindStringSubmatch(strings.TrimSpace(coin))
	if match == nil {
		return GasPrice{}, fmt.Errorf("%w: gas price %q", ErrUnableToParseResponse, coin)
	}
	amount, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		return GasPrice{}, fmt.Errorf("%w: gas price: %w", ErrUnableToParseResponse, err)
	}
	price.Amount = amount
	price.Denom = match[2]
	return price, nil
}

// PerUnit returns the price of one unit of gas, rounded up.
func (p GasPrice) PerUnit() uint64 {
	if p.Gas <= 1 {
		return p.Amount
	}
	gas := uint64(p.Gas)
	return (p.Amount + gas - 1) / gas
}
