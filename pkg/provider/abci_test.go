package provider

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) *string {
	encoded := base64.StdEncoding.EncodeToString([]byte(s))
	return &encoded
}

func TestExtractBalance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     *string
		denom    string
		expected uint64
	}{
		{name: "matching denom", data: b64(`"5gnot,100atom"`), denom: "atom", expected: 100},
		{name: "first of many", data: b64(`"5gnot,100atom"`), denom: "gnot", expected: 5},
		{name: "no match", data: b64(`"5universe"`), denom: "atom", expected: 0},
		{name: "suffix is not a match", data: b64(`"5xatom"`), denom: "atom", expected: 0},
		{name: "empty", data: b64(""), denom: "atom", expected: 0},
		{name: "empty string", data: new(string), denom: "atom", expected: 0},
		{name: "absent", data: nil, denom: "atom", expected: 0},
		{name: "default denom", data: b64(`"1000000ugnot"`), denom: DefaultDenomination, expected: 1_000_000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			balance, err := ExtractBalance(test.data, test.denom)
			require.NoError(t, err)
			assert.Equal(t, test.expected, balance)
		})
	}

	bad := "%%%"
	_, err := ExtractBalance(&bad, "atom")
	assert.ErrorIs(t, err, ErrUnableToParseResponse)
}

const accountJSON = `{"BaseAccount":{"address":"g1jg8mtutu9khhfwc4nxmuhcpftf0pajdhfvsqf5","coins":"1000ugnot","public_key":null,"account_number":"7","sequence":"12"}}`

func TestExtractSequenceAndAccountNumber(t *testing.T) {
	t.Parallel()

	t.Run("initialized account", func(t *testing.T) {
		data := b64(accountJSON)
		assert.Equal(t, uint64(12), ExtractSequence(data))

		num, err := ExtractAccountNumber(data)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), num)

		account, err := ExtractAccount(data)
		require.NoError(t, err)
		assert.Equal(t, "1000ugnot", account.BaseAccount.Coins)
	})

	for name, data := range map[string]*string{
		"absent":      nil,
		"null":        b64("null"),
		"unparseable": b64("{not json"),
		"not base64":  func() *string { s := "%%%"; return &s }(),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, uint64(0), ExtractSequence(data))

			_, err := ExtractAccountNumber(data)
			assert.ErrorIs(t, err, ErrAccountNotInitialized)
			assert.Contains(t, err.Error(), "account is not initialized")
		})
	}
}

func TestExtractSimulateResult(t *testing.T) {
	t.Parallel()

	res, err := ExtractSimulateResult(b64(`{"Error":null,"Data":null,"Events":null,"GasWanted":0,"GasUsed":1000}`))
	require.NoError(t, err)
	assert.NoError(t, res.Err())
	used, err := res.GasUsed.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), used)

	_, err = ExtractSimulateResult(nil)
	assert.ErrorIs(t, err, ErrABCIDataNotInitialized)

	_, err = ExtractSimulateResult(b64("null"))
	assert.ErrorIs(t, err, ErrUnableToParseResponse)

	res, err = ExtractSimulateResult(b64(`{"Error":{"@type":"/std.OutOfGasError"},"GasUsed":5}`))
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err(), ErrOutOfGas)

	res, err = ExtractSimulateResult(b64(`{"Error":"/std.InsufficientFeeError","GasUsed":5}`))
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err(), ErrInsufficientFee)
}

func TestParseABCI(t *testing.T) {
	t.Parallel()

	var out map[string]int
	require.NoError(t, ParseABCI(*b64(`{"a":1}`), &out))
	assert.Equal(t, 1, out["a"])

	err := ParseABCI(*b64("null"), &out)
	assert.ErrorIs(t, err, ErrUnableToParseResponse)
	assert.Equal(t, "unable to parse JSON response", err.Error())
}

func TestParseGasPrice(t *testing.T) {
	t.Parallel()

	price, err := ParseGasPrice(*b64(`{"gas":"1000","price":"1ugnot"}`))
	require.NoError(t, err)
	assert.Equal(t, GasPrice{Gas: 1000, Amount: 1, Denom: "ugnot"}, price)
	assert.Equal(t, uint64(1), price.PerUnit())

	price, err = ParseGasPrice(*b64(`{"gas":10,"price":"25ugnot"}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), price.PerUnit())

	price, err = ParseGasPrice(*b64(`"7ugnot"`))
	require.NoError(t, err)
	assert.Equal(t, GasPrice{Gas: 1, Amount: 7, Denom: "ugnot"}, price)
	assert.Equal(t, uint64(7), price.PerUnit())

	_, err = ParseGasPrice(*b64(`{"gas":"1","price":"ugnot"}`))
	assert.ErrorIs(t, err, ErrUnableToParseResponse)
}
