package token2022

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/token22-sdk/pkg/solana"
)

func TestInitializeMint2_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := InitializeMint2(keys[1], keys[2], keys[3], 9)
	txn := solana.NewTransaction(keys[0], instruction)

	decompiled, err := DecompileInitializeMint2(txn.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[1], decompiled.Mint)
	assert.EqualValues(t, keys[2], decompiled.MintAuthority)
	assert.EqualValues(t, keys[3], decompiled.FreezeAuthority)
	assert.Equal(t, uint8(9), decompiled.Decimals)

	// No freeze authority encodes a zero option tag.
	instruction = InitializeMint2(keys[1], keys[2], nil, 9)
	assert.Equal(t, byte(0), instruction.Data[len(instruction.Data)-1])

	txn = solana.NewTransaction(keys[0], instruction)
	decompiled, err = DecompileInitializeMint2(txn.Message, 0)
	require.NoError(t, err)
	assert.Empty(t, decompiled.FreezeAuthority)
}

func TestDecompile_IncorrectProgram(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := solana.NewInstruction(
		keys[2],
		[]byte{byte(CommandInitializeMint2)},
		solana.NewAccountMeta(keys[1], false),
	)
	txn := solana.NewTransaction(keys[0], instruction)

	_, err := DecompileInitializeMint2(txn.Message, 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	_, err = DecompileInitializeMint2(txn.Message, 1)
	assert.Error(t, err)
}

func TestInitializeTransferFeeConfig_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := InitializeTransferFeeConfig(keys[1], keys[2], keys[3], 250, 5_000_000)
	assert.Equal(t, []byte{byte(CommandTransferFeeExtension), subCommandInitialize}, instruction.Data[:2])

	txn := solana.NewTransaction(keys[0], instruction)
	decompiled, err := DecompileInitializeTransferFeeConfig(txn.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[1], decompiled.Mint)
	assert.EqualValues(t, keys[2], decompiled.ConfigAuthority)
	assert.EqualValues(t, keys[3], decompiled.WithdrawAuthority)
	assert.Equal(t, uint16(250), decompiled.BasisPoints)
	assert.Equal(t, uint64(5_000_000), decompiled.MaxFee)

	// Absent authorities encode as empty options.
	instruction = InitializeTransferFeeConfig(keys[1], nil, nil, 250, 5_000_000)
	txn = solana.NewTransaction(keys[0], instruction)
	decompiled, err = DecompileInitializeTransferFeeConfig(txn.Message, 0)
	require.NoError(t, err)
	assert.Empty(t, decompiled.ConfigAuthority)
	assert.Empty(t, decompiled.WithdrawAuthority)
}

func TestInitializeMetadataPointer_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := InitializeMetadataPointer(keys[1], keys[2], keys[3])
	txn := solana.NewTransaction(keys[0], instruction)

	decompiled, err := DecompileInitializeMetadataPointer(txn.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[1], decompiled.Mint)
	assert.EqualValues(t, keys[2], decompiled.Authority)
	assert.EqualValues(t, keys[3], decompiled.MetadataAddress)
}

func TestExtensionInstructionData(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := InitializeDefaultAccountState(keys[0], AccountStateFrozen)
	assert.Equal(t, []byte{byte(CommandDefaultAccountStateExtension), subCommandInitialize, byte(AccountStateFrozen)}, instruction.Data)

	instruction = InitializeNonTransferableMint(keys[0])
	assert.Equal(t, []byte{byte(CommandInitializeNonTransferableMint)}, instruction.Data)

	instruction = InitializeInterestBearingMint(keys[0], keys[1], -128)
	assert.Equal(t, byte(CommandInterestBearingMintExtension), instruction.Data[0])
	assert.Equal(t, int16(-128), int16(binary.LittleEndian.Uint16(instruction.Data[2+32:])))

	instruction = InitializePermanentDelegate(keys[0], keys[1])
	assert.Equal(t, byte(CommandInitializePermanentDelegate), instruction.Data[0])
	assert.EqualValues(t, keys[1], instruction.Data[1:])

	instruction = InitializeConfidentialTransferMint(keys[0], keys[1], keys[2], true)
	assert.Equal(t, 2+32+1+32, len(instruction.Data))
	assert.Equal(t, byte(1), instruction.Data[2+32])

	instruction = EnableCpiGuard(keys[0], keys[1])
	assert.Equal(t, []byte{byte(CommandCpiGuardExtension), subCommandInitialize}, instruction.Data)
	require.Len(t, instruction.Accounts, 2)
	assert.True(t, instruction.Accounts[1].IsSigner)

	instruction = EnableRequiredMemoTransfers(keys[0], keys[1])
	assert.Equal(t, []byte{byte(CommandMemoTransferExtension), subCommandInitialize}, instruction.Data)
}

func TestMetadataInstructionData(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := InitializeMetadata(keys[0], keys[1], keys[2], "My Token", "MYTKN", "https://example.com/token.json")
	assert.Equal(t, initializeMetadataDiscriminator, instruction.Data[:8])
	require.Len(t, instruction.Accounts, 4)
	assert.EqualValues(t, keys[0], instruction.Accounts[0].PublicKey)
	assert.EqualValues(t, keys[0], instruction.Accounts[2].PublicKey)
	assert.True(t, instruction.Accounts[3].IsSigner)

	nameLen := binary.LittleEndian.Uint32(instruction.Data[8:])
	assert.Equal(t, uint32(len("My Token")), nameLen)
	assert.Equal(t, "My Token", string(instruction.Data[12:12+nameLen]))

	// Reserved keys encode as single-byte field variants.
	instruction = UpdateMetadataField(keys[0], keys[1], FieldKeyURI, "https://example.com/v2.json")
	assert.Equal(t, updateMetadataFieldDiscriminator, instruction.Data[:8])
	assert.Equal(t, fieldVariantURI, instruction.Data[8])
	assert.Equal(t, uint32(len("https://example.com/v2.json")), binary.LittleEndian.Uint32(instruction.Data[9:]))

	// Custom keys carry the length-prefixed key after the variant tag.
	instruction = UpdateMetadataField(keys[0], keys[1], "tier", "gold")
	assert.Equal(t, fieldVariantCustom, instruction.Data[8])
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(instruction.Data[9:]))
	assert.Equal(t, "tier", string(instruction.Data[13:17]))

	instruction = RemoveMetadataKey(keys[0], keys[1], "tier", true)
	assert.Equal(t, removeMetadataKeyDiscriminator, instruction.Data[:8])
	assert.Equal(t, byte(1), instruction.Data[8])
	assert.Equal(t, "tier", string(instruction.Data[13:]))

	instruction = UpdateMetadataAuthority(keys[0], keys[1], keys[2])
	assert.Equal(t, updateMetadataAuthorityDiscriminator, instruction.Data[:8])
	assert.EqualValues(t, keys[2], instruction.Data[8:])

	// Clearing the authority writes all zeroes.
	instruction = UpdateMetadataAuthority(keys[0], keys[1], nil)
	assert.Equal(t, make([]byte, 32), instruction.Data[8:])
}

func TestReallocate(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := Reallocate(keys[0], keys[1], keys[2], ExtensionCpiGuard, ExtensionMemoTransfer)
	assert.Equal(t, byte(CommandReallocate), instruction.Data[0])
	assert.Equal(t, uint16(ExtensionCpiGuard), binary.LittleEndian.Uint16(instruction.Data[1:]))
	assert.Equal(t, uint16(ExtensionMemoTransfer), binary.LittleEndian.Uint16(instruction.Data[3:]))
	require.Len(t, instruction.Accounts, 4)
	assert.True(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[3].IsSigner)
}

func TestGetCommand(t *testing.T) {
	keys := generateKeys(t, 3)

	txn := solana.NewTransaction(
		keys[0],
		InitializeNonTransferableMint(keys[1]),
		InitializeMint2(keys[1], keys[2], nil, 0),
	)

	command, err := GetCommand(txn.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, CommandInitializeNonTransferableMint, command)

	command, err = GetCommand(txn.Message, 1)
	require.NoError(t, err)
	assert.Equal(t, CommandInitializeMint2, command)

	_, err = GetCommand(txn.Message, 2)
	assert.Error(t, err)
}

func TestGetAssociatedAccount(t *testing.T) {
	keys := generateKeys(t, 2)

	addr, err := GetAssociatedAccount(keys[0], keys[1])
	require.NoError(t, err)
	assert.Len(t, addr, 32)

	// Derivation is deterministic.
	again, err := GetAssociatedAccount(keys[0], keys[1])
	require.NoError(t, err)
	assert.EqualValues(t, addr, again)

	instruction, created, err := CreateAssociatedTokenAccount(keys[0], keys[0], keys[1])
	require.NoError(t, err)
	assert.EqualValues(t, addr, created)
	assert.EqualValues(t, addr, instruction.Accounts[1].PublicKey)
	assert.EqualValues(t, ProgramKey, instruction.Accounts[5].PublicKey)
}
