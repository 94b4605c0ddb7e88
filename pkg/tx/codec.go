package tx

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrMalformedTx   = errors.New("malformed transaction")
	ErrUnexpectedTag = errors.New("unexpected wire type")
)

// Field numbers of the tm2.tx protobuf schema.
const (
	fieldTxMessages   protowire.Number = 1
	fieldTxFee        protowire.Number = 2
	fieldTxSignatures protowire.Number = 3
	fieldTxMemo       protowire.Number = 4

	fieldMessageTypeURL protowire.Number = 1
	fieldMessageValue   protowire.Number = 2

	fieldFeeGasWanted protowire.Number = 1
	fieldFeeGasFee    protowire.Number = 2

	fieldSignaturePubKey    protowire.Number = 1
	fieldSignatureSignature protowire.Number = 2

	fieldPubKeyType  protowire.Number = 1
	fieldPubKeyValue protowire.Number = 2

	fieldSecp256k1Key protowire.Number = 1
)

// Encode serializes t in the protobuf wire format. Scalar fields holding
// their zero value are omitted.
func Encode(t *Tx) []byte {
	if t == nil {
		return nil
	}

	var b []byte
	for _, m := range t.Messages {
		b = appendMessage(b, fieldTxMessages, encodeMessage(m))
	}
	if t.Fee != nil {
		b = appendMessage(b, fieldTxFee, encodeFee(*t.Fee))
	}
	for _, s := range t.Signatures {
		b = appendMessage(b, fieldTxSignatures, encodeSignature(s))
	}
	b = appendString(b, fieldTxMemo, t.Memo)
	return b
}

// EncodePubKeySecp256k1 wraps a compressed secp256k1 key in its protobuf
// envelope, as carried in PubKey.Value.
func EncodePubKeySecp256k1(key []byte) []byte {
	return appendBytes(nil, fieldSecp256k1Key, key)
}

// DecodePubKeySecp256k1 is the inverse of EncodePubKeySecp256k1.
func DecodePubKeySecp256k1(b []byte) ([]byte, error) {
	var key []byte
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == fieldSecp256k1Key {
			v, n, err := consumeBytes(typ, b)
			key = v
			return n, err
		}
		return skip(num, typ, b)
	})
	return key, err
}

func encodeMessage(m Message) []byte {
	var b []byte
	b = appendString(b, fieldMessageTypeURL, m.TypeURL)
	b = appendBytes(b, fieldMessageValue, m.Value)
	return b
}

func encodeFee(f Fee) []byte {
	var b []byte
	if f.GasWanted != 0 {
		b = protowire.AppendTag(b, fieldFeeGasWanted, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(f.GasWanted))
	}
	b = appendString(b, fieldFeeGasFee, f.GasFee)
	return b
}

func encodeSignature(s Signature) []byte {
	var b []byte
	if s.PubKey != nil {
		var pk []byte
		pk = appendString(pk, fieldPubKeyType, s.PubKey.Type)
		pk = appendBytes(pk, fieldPubKeyValue, s.PubKey.Value)
		b = appendMessage(b, fieldSignaturePubKey, pk)
	}
	b = appendBytes(b, fieldSignatureSignature, s.Signature)
	return b
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	return appendMessage(b, num, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// Decode parses a protobuf encoded transaction. Unknown fields are skipped.
func Decode(b []byte) (*Tx, error) {
	t := &Tx{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldTxMessages:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			m, err := decodeMessage(v)
			if err != nil {
				return n, err
			}
			t.Messages = append(t.Messages, m)
			return n, nil
		case fieldTxFee:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			f, err := decodeFee(v)
			if err != nil {
				return n, err
			}
			t.Fee = &f
			return n, nil
		case fieldTxSignatures:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			s, err := decodeSignature(v)
			if err != nil {
				return n, err
			}
			t.Signatures = append(t.Signatures, s)
			return n, nil
		case fieldTxMemo:
			v, n, err := consumeBytes(typ, b)
			t.Memo = string(v)
			return n, err
		default:
			return skip(num, typ, b)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTx, err)
	}
	return t, nil
}

func decodeMessage(b []byte) (Message, error) {
	var m Message
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldMessageTypeURL:
			v, n, err := consumeBytes(typ, b)
			m.TypeURL = string(v)
			return n, err
		case fieldMessageValue:
			v, n, err := consumeBytes(typ, b)
			m.Value = v
			return n, err
		default:
			return skip(num, typ, b)
		}
	})
	return m, err
}

func decodeFee(b []byte) (Fee, error) {
	var f Fee
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldFeeGasWanted:
			if typ != protowire.VarintType {
				return 0, fmt.Errorf("%w: gas_wanted", ErrUnexpectedTag)
			}
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			f.GasWanted = protowire.DecodeZigZag(v)
			return n, nil
		case fieldFeeGasFee:
			v, n, err := consumeBytes(typ, b)
			f.GasFee = string(v)
			return n, err
		default:
			return skip(num, typ, b)
		}
	})
	return f, err
}

func decodeSignature(b []byte) (Signature, error) {
	var s Signature
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldSignaturePubKey:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			pk, err := decodePubKey(v)
			if err != nil {
				return n, err
			}
			s.PubKey = &pk
			return n, nil
		case fieldSignatureSignature:
			v, n, err := consumeBytes(typ, b)
			s.Signature = v
			return n, err
		default:
			return skip(num, typ, b)
		}
	})
	return s, err
}

func decodePubKey(b []byte) (PubKey, error) {
	var pk PubKey
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldPubKeyType:
			v, n, err := consumeBytes(typ, b)
			pk.Type = string(v)
			return n, err
		case fieldPubKeyValue:
			v, n, err := consumeBytes(typ, b)
			pk.Value = v
			return n, err
		default:
			return skip(num, typ, b)
		}
	})
	return pk, err
}

// walk calls field for every field of the message in b. field consumes the
// value following the tag and returns its length.
func walk(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 || n > len(b) {
			return protowire.ParseError(-1)
		}
		b = b[n:]
	}
	return nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, ErrUnexpectedTag
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, n, protowire.ParseError(n)
	}
	return append([]byte(nil), v...), n, nil
}

func skip(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	return n, nil
}
