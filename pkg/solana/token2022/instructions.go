package token2022

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/token22-sdk/pkg/solana"
	"github.com/code-payments/token22-sdk/pkg/solana/system"
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L376-L388
func InitializeMint2(mint, mintAuthority, freezeAuthority ed25519.PublicKey, decimals uint8) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 2+2*ed25519.PublicKeySize+1)
	data = append(data, byte(CommandInitializeMint2), decimals)
	data = append(data, mintAuthority...)
	if len(freezeAuthority) > 0 {
		data = append(data, 1)
		data = append(data, freezeAuthority...)
	} else {
		data = append(data, 0)
	}

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

type DecompiledInitializeMint2 struct {
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey
	Decimals        uint8
}

func DecompileInitializeMint2(m solana.Message, index int) (*DecompiledInitializeMint2, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, []byte{byte(CommandInitializeMint2)}) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 1 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) < 2+ed25519.PublicKeySize+1 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	decompiled := &DecompiledInitializeMint2{
		Mint:          m.Accounts[i.Accounts[0]],
		Decimals:      i.Data[1],
		MintAuthority: i.Data[2 : 2+ed25519.PublicKeySize],
	}

	optionOffset := 2 + ed25519.PublicKeySize
	if i.Data[optionOffset] == 1 {
		if len(i.Data) != optionOffset+1+ed25519.PublicKeySize {
			return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
		}
		decompiled.FreezeAuthority = i.Data[optionOffset+1:]
	}

	return decompiled, nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L339-L351
func InitializeAccount3(account, mint, owner ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The account to initialize.
	//   1. `[]` The mint this account will be associated with.
	data := make([]byte, 0, 1+ed25519.PublicKeySize)
	data = append(data, byte(CommandInitializeAccount3))
	data = append(data, owner...)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(account, false),
		solana.NewReadonlyAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L742-L763
func Reallocate(account, owner, payer ed25519.PublicKey, newExtensions ...ExtensionType) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The account to reallocate.
	//   1. `[writable, signer]` The payer to fund the reallocation.
	//   2. `[]` System program for the reallocation funding.
	//   3. `[signer]` The account's owner.
	data := make([]byte, 1+2*len(newExtensions))
	data[0] = byte(CommandReallocate)
	for i, t := range newExtensions {
		binary.LittleEndian.PutUint16(data[1+2*i:], uint16(t))
	}

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(payer, true),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}
