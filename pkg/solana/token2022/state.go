package token2022

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	binutil "github.com/code-payments/token22-sdk/pkg/solana/binary"
)

const optionSize = 4

// Mint is the base mint state. Extension TLV entries, if any, follow the
// base layout in the raw account data and are read with GetExtensionData.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program/src/state.rs#L18
type Mint struct {
	// Optional authority used to mint new tokens.
	MintAuthority ed25519.PublicKey
	// Total supply of tokens.
	Supply uint64
	// Number of base 10 digits to the right of the decimal place.
	Decimals uint8
	// Is initialized
	IsInitialized bool
	// Optional authority to freeze token accounts.
	FreezeAuthority ed25519.PublicKey
}

func (m *Mint) Marshal() []byte {
	b := make([]byte, MintSize)

	var offset int
	binutil.PutOptionalKey32(b, m.MintAuthority, &offset, optionSize)
	binutil.PutUint64(b[offset:], m.Supply, &offset)
	binutil.PutUint8(b[offset:], m.Decimals, &offset)
	if m.IsInitialized {
		b[offset] = 1
	}
	offset++
	binutil.PutOptionalKey32(b[offset:], m.FreezeAuthority, &offset, optionSize)

	return b
}

// Unmarshal accepts base-sized data or base data followed by an extension
// region; only the base fields are decoded here.
func (m *Mint) Unmarshal(b []byte) bool {
	if len(b) < MintSize {
		return false
	}

	var offset int
	binutil.GetOptionalKey32(b, &m.MintAuthority, &offset, optionSize)
	binutil.GetUint64(b[offset:], &m.Supply, &offset)
	binutil.GetUint8(b[offset:], &m.Decimals, &offset)
	m.IsInitialized = b[offset] == 1
	offset++
	binutil.GetOptionalKey32(b[offset:], &m.FreezeAuthority, &offset, optionSize)

	return true
}

// GetExtensionData walks the TLV region of raw mint account data and
// returns the payload of the requested extension, or false if the account
// carries no such entry.
func GetExtensionData(accountData []byte, t ExtensionType) ([]byte, bool, error) {
	entries, err := walkTLV(accountData)
	if err != nil {
		return nil, false, err
	}

	for _, e := range entries {
		if e.extensionType == t {
			return e.data, true, nil
		}
	}
	return nil, false, nil
}

// GetExtensionTypes enumerates the extensions present on raw mint account
// data, in TLV order.
func GetExtensionTypes(accountData []byte) ([]ExtensionType, error) {
	entries, err := walkTLV(accountData)
	if err != nil {
		return nil, err
	}

	types := make([]ExtensionType, len(entries))
	for i, e := range entries {
		types[i] = e.extensionType
	}
	return types, nil
}

type tlvEntry struct {
	extensionType ExtensionType
	data          []byte
}

func walkTLV(accountData []byte) ([]tlvEntry, error) {
	if len(accountData) <= ExtensionStartOffset {
		return nil, nil
	}

	var entries []tlvEntry

	offset := ExtensionStartOffset
	for offset < len(accountData) {
		if offset+tlvHeaderSize > len(accountData) {
			return nil, errors.Errorf("truncated tlv header at offset %d", offset)
		}

		extensionType := ExtensionType(binary.LittleEndian.Uint16(accountData[offset:]))
		length := int(binary.LittleEndian.Uint16(accountData[offset+2:]))
		offset += tlvHeaderSize

		// Trailing uninitialized space terminates the walk.
		if extensionType == ExtensionUninitialized {
			break
		}

		if offset+length > len(accountData) {
			return nil, errors.Errorf("tlv entry %s exceeds account data", extensionType)
		}

		entries = append(entries, tlvEntry{
			extensionType: extensionType,
			data:          accountData[offset : offset+length],
		})
		offset += length
	}

	return entries, nil
}
