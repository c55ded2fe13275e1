package token2022

import (
	"crypto/ed25519"

	"github.com/code-payments/token22-sdk/pkg/solana"
)

// The token-metadata interface dispatches on 8-byte discriminators:
// sha256("spl_token_metadata_interface:<name>")[..8]. Token-2022 implements
// the interface itself, with the metadata stored in the mint's TLV region.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token-metadata/interface/src/instruction.rs
var (
	initializeMetadataDiscriminator      = []byte{210, 225, 30, 162, 88, 184, 77, 141}
	updateMetadataFieldDiscriminator     = []byte{221, 233, 49, 45, 181, 202, 220, 200}
	removeMetadataKeyDiscriminator       = []byte{234, 18, 32, 56, 89, 141, 37, 181}
	updateMetadataAuthorityDiscriminator = []byte{215, 228, 166, 228, 84, 100, 86, 123}
)

// Field key variants understood by the update-field instruction. Reserved
// base fields encode as a single-byte variant; anything else encodes as a
// length-prefixed custom key.
const (
	fieldVariantName   byte = 0
	fieldVariantSymbol byte = 1
	fieldVariantURI    byte = 2
	fieldVariantCustom byte = 3
)

// InitializeMetadata writes the base name/symbol/uri record into the mint's
// TLV region. The mint must carry a metadata pointer aimed at itself, and
// must hold enough lamports to cover the grown account.
func InitializeMetadata(mint, updateAuthority, mintAuthority ed25519.PublicKey, name, symbol, uri string) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The metadata account (the mint itself).
	//   1. `[]` The update authority.
	//   2. `[]` The mint.
	//   3. `[signer]` The mint authority.
	data := make([]byte, 0, 8+3*4+len(name)+len(symbol)+len(uri))
	data = append(data, initializeMetadataDiscriminator...)
	data = appendString(data, name)
	data = appendString(data, symbol)
	data = appendString(data, uri)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(updateAuthority, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(mintAuthority, true),
	)
}

// UpdateMetadataField sets one field. Reserved keys (name, symbol, uri)
// address the base record; any other key addresses the additional field
// list, creating the entry if absent.
func UpdateMetadataField(mint, updateAuthority ed25519.PublicKey, key, value string) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The metadata account (the mint itself).
	//   1. `[signer]` The update authority.
	data := make([]byte, 0, 8+1+4+len(key)+4+len(value))
	data = append(data, updateMetadataFieldDiscriminator...)
	data = appendFieldKey(data, key)
	data = appendString(data, value)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(updateAuthority, true),
	)
}

// RemoveMetadataKey deletes one additional field. Reserved keys cannot be
// removed. With idempotent set, removing an absent key succeeds.
func RemoveMetadataKey(mint, updateAuthority ed25519.PublicKey, key string, idempotent bool) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The metadata account (the mint itself).
	//   1. `[signer]` The update authority.
	data := make([]byte, 0, 8+1+4+len(key))
	data = append(data, removeMetadataKeyDiscriminator...)
	if idempotent {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	data = appendString(data, key)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(updateAuthority, true),
	)
}

// UpdateMetadataAuthority rotates the update authority. An empty new
// authority makes the record immutable.
func UpdateMetadataAuthority(mint, currentAuthority, newAuthority ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The metadata account (the mint itself).
	//   1. `[signer]` The current update authority.
	data := make([]byte, 0, 8+ed25519.PublicKeySize)
	data = append(data, updateMetadataAuthorityDiscriminator...)
	data = appendKey(data, newAuthority)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(currentAuthority, true),
	)
}

func appendFieldKey(b []byte, key string) []byte {
	switch key {
	case FieldKeyName:
		return append(b, fieldVariantName)
	case FieldKeySymbol:
		return append(b, fieldVariantSymbol)
	case FieldKeyURI:
		return append(b, fieldVariantURI)
	default:
		b = append(b, fieldVariantCustom)
		return appendString(b, key)
	}
}
