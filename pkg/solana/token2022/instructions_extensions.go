package token2022

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/token22-sdk/pkg/solana"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/transfer_fee/instruction.rs#L30-L52
func InitializeTransferFeeConfig(mint, configAuthority, withdrawAuthority ed25519.PublicKey, basisPoints uint16, maxFee uint64) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 2+2*(1+ed25519.PublicKeySize)+2+8)
	data = append(data, byte(CommandTransferFeeExtension), subCommandInitialize)
	data = appendOptionalKey(data, configAuthority)
	data = appendOptionalKey(data, withdrawAuthority)
	data = binary.LittleEndian.AppendUint16(data, basisPoints)
	data = binary.LittleEndian.AppendUint64(data, maxFee)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

type DecompiledInitializeTransferFeeConfig struct {
	Mint              ed25519.PublicKey
	ConfigAuthority   ed25519.PublicKey
	WithdrawAuthority ed25519.PublicKey
	BasisPoints       uint16
	MaxFee            uint64
}

func DecompileInitializeTransferFeeConfig(m solana.Message, index int) (*DecompiledInitializeTransferFeeConfig, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, []byte{byte(CommandTransferFeeExtension), subCommandInitialize}) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 1 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	decompiled := &DecompiledInitializeTransferFeeConfig{
		Mint: m.Accounts[i.Accounts[0]],
	}

	offset := 2
	var err error
	if decompiled.ConfigAuthority, err = readOptionalKey(i.Data, &offset); err != nil {
		return nil, errors.Wrap(err, "failed to read config authority")
	}
	if decompiled.WithdrawAuthority, err = readOptionalKey(i.Data, &offset); err != nil {
		return nil, errors.Wrap(err, "failed to read withdraw authority")
	}
	if len(i.Data) != offset+2+8 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}
	decompiled.BasisPoints = binary.LittleEndian.Uint16(i.Data[offset:])
	decompiled.MaxFee = binary.LittleEndian.Uint64(i.Data[offset+2:])

	return decompiled, nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L643-L654
func InitializeMintCloseAuthority(mint, closeAuthority ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 1+1+ed25519.PublicKeySize)
	data = append(data, byte(CommandInitializeMintCloseAuthority))
	data = appendOptionalKey(data, closeAuthority)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/confidential_transfer/instruction.rs#L55-L70
func InitializeConfidentialTransferMint(mint, authority, auditorElGamal ed25519.PublicKey, autoApproveNewAccounts bool) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 2+2*ed25519.PublicKeySize+1)
	data = append(data, byte(CommandConfidentialTransferExtension), subCommandInitialize)
	data = appendKey(data, authority)
	if autoApproveNewAccounts {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	data = appendKey(data, auditorElGamal)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/default_account_state/instruction.rs#L29-L39
func InitializeDefaultAccountState(mint ed25519.PublicKey, state AccountState) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandDefaultAccountStateExtension), subCommandInitialize, byte(state)},
		solana.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L765-L776
func InitializeNonTransferableMint(mint ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandInitializeNonTransferableMint)},
		solana.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/interest_bearing_mint/instruction.rs#L27-L37
func InitializeInterestBearingMint(mint, rateAuthority ed25519.PublicKey, rate int16) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 2+ed25519.PublicKeySize+2)
	data = append(data, byte(CommandInterestBearingMintExtension), subCommandInitialize)
	data = appendKey(data, rateAuthority)
	data = binary.LittleEndian.AppendUint16(data, uint16(rate))

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L787-L799
func InitializePermanentDelegate(mint, delegate ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 1+ed25519.PublicKeySize)
	data = append(data, byte(CommandInitializePermanentDelegate))
	data = appendKey(data, delegate)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/transfer_hook/instruction.rs#L26-L38
func InitializeTransferHook(mint, authority, hookProgram ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 2+2*ed25519.PublicKeySize)
	data = append(data, byte(CommandTransferHookExtension), subCommandInitialize)
	data = appendKey(data, authority)
	data = appendKey(data, hookProgram)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/metadata_pointer/instruction.rs#L28-L40
func InitializeMetadataPointer(mint, authority, metadataAddress ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 2+2*ed25519.PublicKeySize)
	data = append(data, byte(CommandMetadataPointerExtension), subCommandInitialize)
	data = appendKey(data, authority)
	data = appendKey(data, metadataAddress)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

type DecompiledInitializeMetadataPointer struct {
	Mint            ed25519.PublicKey
	Authority       ed25519.PublicKey
	MetadataAddress ed25519.PublicKey
}

func DecompileInitializeMetadataPointer(m solana.Message, index int) (*DecompiledInitializeMetadataPointer, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, []byte{byte(CommandMetadataPointerExtension), subCommandInitialize}) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 1 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) != 2+2*ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	return &DecompiledInitializeMetadataPointer{
		Mint:            m.Accounts[i.Accounts[0]],
		Authority:       i.Data[2 : 2+ed25519.PublicKeySize],
		MetadataAddress: i.Data[2+ed25519.PublicKeySize:],
	}, nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/group_pointer/instruction.rs#L27-L39
func InitializeGroupPointer(mint, authority, groupAddress ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 2+2*ed25519.PublicKeySize)
	data = append(data, byte(CommandGroupPointerExtension), subCommandInitialize)
	data = appendKey(data, authority)
	data = appendKey(data, groupAddress)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/group_member_pointer/instruction.rs#L28-L40
func InitializeGroupMemberPointer(mint, authority, memberAddress ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 0, 2+2*ed25519.PublicKeySize)
	data = append(data, byte(CommandGroupMemberPointerExtension), subCommandInitialize)
	data = appendKey(data, authority)
	data = appendKey(data, memberAddress)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs#L620-L630
func InitializeImmutableOwner(account ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The account to initialize.
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandInitializeImmutableOwner)},
		solana.NewAccountMeta(account, false),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/memo_transfer/instruction.rs#L26-L37
func EnableRequiredMemoTransfers(account, owner ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The account to update.
	//   1. `[signer]` The account's owner.
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandMemoTransferExtension), subCommandInitialize},
		solana.NewAccountMeta(account, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/cpi_guard/instruction.rs#L23-L34
func EnableCpiGuard(account, owner ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The account to update.
	//   1. `[signer]` The account's owner.
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandCpiGuardExtension), subCommandInitialize},
		solana.NewAccountMeta(account, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

// appendOptionalKey writes a one-byte option tag followed by the key when
// present. appendKey (metadata.go) writes the raw 32 bytes, all zero when
// absent; the two encodings coexist in the program's instruction set.
func appendOptionalKey(b []byte, key ed25519.PublicKey) []byte {
	if len(key) == 0 {
		return append(b, 0)
	}
	b = append(b, 1)
	return append(b, key...)
}

func readOptionalKey(b []byte, offset *int) (ed25519.PublicKey, error) {
	if *offset >= len(b) {
		return nil, errors.New("unexpected end of data")
	}

	tag := b[*offset]
	*offset++

	switch tag {
	case 0:
		return nil, nil
	case 1:
		if *offset+ed25519.PublicKeySize > len(b) {
			return nil, errors.New("unexpected end of data")
		}
		key := make(ed25519.PublicKey, ed25519.PublicKeySize)
		copy(key, b[*offset:])
		*offset += ed25519.PublicKeySize
		return key, nil
	default:
		return nil, errors.Errorf("invalid option tag: %d", tag)
	}
}
