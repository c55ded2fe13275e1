package token2022

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Protocol maxima for the base metadata fields.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token-metadata/interface/src/state.rs
const (
	MaxMetadataNameLen   = 32
	MaxMetadataSymbolLen = 10
	MaxMetadataURILen    = 200
)

// Reserved keys addressing the base fields through the field-update
// instruction instead of a custom key/value pair.
const (
	FieldKeyName   = "name"
	FieldKeySymbol = "symbol"
	FieldKeyURI    = "uri"
)

// Field is one custom key/value pair in a metadata record. Order is
// preserved through encode/decode; keys are unique.
type Field struct {
	Key   string
	Value string
}

// Metadata is a token-metadata record as stored in the mint's TLV entry.
// Strings are borsh-encoded (u32 length prefix, then bytes).
type Metadata struct {
	// UpdateAuthority may update fields. All zeroes means immutable.
	UpdateAuthority ed25519.PublicKey

	// Mint this record describes.
	Mint ed25519.PublicKey

	Name   string
	Symbol string
	URI    string

	AdditionalFields []Field
}

// Validate enforces the protocol maxima on the base fields. It runs before
// any size computation so a bad record never reaches the ledger.
func (m *Metadata) Validate() error {
	if len(m.Name) > MaxMetadataNameLen {
		return &MetadataFieldTooLongError{Field: FieldKeyName, Len: len(m.Name), Max: MaxMetadataNameLen}
	}
	if len(m.Symbol) > MaxMetadataSymbolLen {
		return &MetadataFieldTooLongError{Field: FieldKeySymbol, Len: len(m.Symbol), Max: MaxMetadataSymbolLen}
	}
	if len(m.URI) > MaxMetadataURILen {
		return &MetadataFieldTooLongError{Field: FieldKeyURI, Len: len(m.URI), Max: MaxMetadataURILen}
	}
	return nil
}

func (m *Metadata) Marshal() []byte {
	b := make([]byte, 0, m.encodedLen())

	b = appendKey(b, m.UpdateAuthority)
	b = appendKey(b, m.Mint)
	b = appendString(b, m.Name)
	b = appendString(b, m.Symbol)
	b = appendString(b, m.URI)

	b = binary.LittleEndian.AppendUint32(b, uint32(len(m.AdditionalFields)))
	for _, f := range m.AdditionalFields {
		b = appendString(b, f.Key)
		b = appendString(b, f.Value)
	}

	return b
}

func (m *Metadata) Unmarshal(b []byte) error {
	var offset int

	key, err := readKey(b, &offset)
	if err != nil {
		return errors.Wrap(err, "failed to read update authority")
	}
	m.UpdateAuthority = key

	if key, err = readKey(b, &offset); err != nil {
		return errors.Wrap(err, "failed to read mint")
	}
	m.Mint = key

	if m.Name, err = readString(b, &offset); err != nil {
		return errors.Wrap(err, "failed to read name")
	}
	if m.Symbol, err = readString(b, &offset); err != nil {
		return errors.Wrap(err, "failed to read symbol")
	}
	if m.URI, err = readString(b, &offset); err != nil {
		return errors.Wrap(err, "failed to read uri")
	}

	if offset+4 > len(b) {
		return errors.New("failed to read field count")
	}
	count := binary.LittleEndian.Uint32(b[offset:])
	offset += 4

	m.AdditionalFields = nil
	for i := uint32(0); i < count; i++ {
		var f Field
		if f.Key, err = readString(b, &offset); err != nil {
			return errors.Wrapf(err, "failed to read key at %d", i)
		}
		if f.Value, err = readString(b, &offset); err != nil {
			return errors.Wrapf(err, "failed to read value at %d", i)
		}
		m.AdditionalFields = append(m.AdditionalFields, f)
	}

	return nil
}

// TLVLen is the exact on-chain footprint of the record: the TLV header
// plus the encoded payload. Not an estimate.
func (m *Metadata) TLVLen() int {
	return tlvHeaderSize + m.encodedLen()
}

// Field returns the value stored under key, resolving the reserved keys to
// the base fields.
func (m *Metadata) Field(key string) (string, bool) {
	switch key {
	case FieldKeyName:
		return m.Name, true
	case FieldKeySymbol:
		return m.Symbol, true
	case FieldKeyURI:
		return m.URI, true
	}

	for _, f := range m.AdditionalFields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// SetField writes the value under key, resolving reserved keys to the base
// fields and preserving insertion order for custom keys.
func (m *Metadata) SetField(key, value string) {
	switch key {
	case FieldKeyName:
		m.Name = value
		return
	case FieldKeySymbol:
		m.Symbol = value
		return
	case FieldKeyURI:
		m.URI = value
		return
	}

	for i := range m.AdditionalFields {
		if m.AdditionalFields[i].Key == key {
			m.AdditionalFields[i].Value = value
			return
		}
	}
	m.AdditionalFields = append(m.AdditionalFields, Field{Key: key, Value: value})
}

func (m *Metadata) encodedLen() int {
	total := 2*ed25519.PublicKeySize + 3*4
	total += len(m.Name) + len(m.Symbol) + len(m.URI)
	total += 4
	for _, f := range m.AdditionalFields {
		total += 4 + len(f.Key) + 4 + len(f.Value)
	}
	return total
}

func appendKey(b []byte, key ed25519.PublicKey) []byte {
	if len(key) == 0 {
		return append(b, make([]byte, ed25519.PublicKeySize)...)
	}
	return append(b, key...)
}

func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

func readKey(b []byte, offset *int) (ed25519.PublicKey, error) {
	if *offset+ed25519.PublicKeySize > len(b) {
		return nil, errors.New("unexpected end of data")
	}

	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, b[*offset:])
	*offset += ed25519.PublicKeySize
	return key, nil
}

func readString(b []byte, offset *int) (string, error) {
	if *offset+4 > len(b) {
		return "", errors.New("unexpected end of data")
	}
	strLen := int(binary.LittleEndian.Uint32(b[*offset:]))
	*offset += 4

	if *offset+strLen > len(b) {
		return "", errors.New("string length exceeds data")
	}
	s := string(b[*offset : *offset+strLen])
	*offset += strLen
	return s, nil
}
