package token2022

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/token22-sdk/pkg/solana"
	"github.com/code-payments/token22-sdk/pkg/solana/system"
)

func TestMintBuilder_TransferFeeOnly(t *testing.T) {
	keys := generateKeys(t, 4)
	ledger := newFakeLedger()

	plan, err := NewMintBuilder(ledger, keys[0], keys[1], 6).
		WithTransferFee(keys[2], keys[3], 100, 1_000_000).
		Build()
	require.NoError(t, err)

	// Base width plus one TLV entry for the fee config.
	assert.Equal(t, uint32(278), plan.Layout.TotalSize)
	assert.Equal(t, ledger.rentFor(278), plan.Layout.RequiredLamports)
	assert.Equal(t, 1, ledger.rentCalls)

	require.Len(t, plan.BeforeBase, 1)
	assert.Empty(t, plan.AfterBase)
	assert.Empty(t, plan.MetadataInit)
	assert.Empty(t, plan.MetadataFields)

	instructions := plan.Instructions()
	require.Len(t, instructions, 3)

	txn := solana.NewTransaction(keys[0], instructions...)

	created, err := system.DecompileCreateAccount(txn.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, plan.MintAccount(), created.Address)
	assert.EqualValues(t, ProgramKey, created.Owner)
	assert.Equal(t, ledger.rentFor(278), created.Lamports)
	assert.Equal(t, uint64(278), created.Size)

	fee, err := DecompileInitializeTransferFeeConfig(txn.Message, 1)
	require.NoError(t, err)
	assert.EqualValues(t, plan.MintAccount(), fee.Mint)
	assert.EqualValues(t, keys[2], fee.ConfigAuthority)
	assert.EqualValues(t, keys[3], fee.WithdrawAuthority)
	assert.Equal(t, uint16(100), fee.BasisPoints)
	assert.Equal(t, uint64(1_000_000), fee.MaxFee)

	base, err := DecompileInitializeMint2(txn.Message, 2)
	require.NoError(t, err)
	assert.EqualValues(t, plan.MintAccount(), base.Mint)
	assert.EqualValues(t, keys[1], base.MintAuthority)
	assert.Empty(t, base.FreezeAuthority)
	assert.Equal(t, uint8(6), base.Decimals)
}

func TestMintBuilder_IncompatibleExtensionsFailFast(t *testing.T) {
	keys := generateKeys(t, 4)
	ledger := newFakeLedger()

	_, err := NewMintBuilder(ledger, keys[0], keys[1], 0).
		WithNonTransferable().
		WithTransferFee(keys[2], keys[3], 50, 500).
		Build()
	require.Error(t, err)

	var compatErr *CompatibilityError
	require.ErrorAs(t, err, &compatErr)
	require.Len(t, compatErr.Violations, 1)
	assert.Equal(t, ExtensionNonTransferable, compatErr.Violations[0].A)
	assert.Equal(t, ExtensionTransferFeeConfig, compatErr.Violations[0].B)

	// The build aborted before any size or rent computation.
	assert.Zero(t, ledger.rentCalls)
}

func TestMintBuilder_DuplicateExtension(t *testing.T) {
	keys := generateKeys(t, 2)

	_, err := NewMintBuilder(newFakeLedger(), keys[0], keys[1], 0).
		WithNonTransferable().
		WithNonTransferable().
		Build()
	require.Error(t, err)

	var dupErr *DuplicateExtensionError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, ExtensionNonTransferable, dupErr.Type)
}

func TestMintBuilder_Deterministic(t *testing.T) {
	keys := generateKeys(t, 3)

	build := func() *MintPlan {
		plan, err := NewMintBuilder(newFakeLedger(), keys[0], keys[1], 9).
			WithTransferFee(keys[1], keys[2], 25, 10_000).
			WithMintCloseAuthority(keys[2]).
			WithInterestRate(keys[2], 100).
			Build()
		require.NoError(t, err)
		return plan
	}

	first := build()
	second := build()

	assert.Equal(t, first.Layout, second.Layout)

	// Identical inputs yield identical instruction streams modulo the
	// freshly generated mint key.
	firstIxns := first.Instructions()
	secondIxns := second.Instructions()
	require.Equal(t, len(firstIxns), len(secondIxns))
	for i := range firstIxns {
		assert.Equal(t, firstIxns[i].Program, secondIxns[i].Program, "instruction %d", i)
		assert.Equal(t, firstIxns[i].Data, secondIxns[i].Data, "instruction %d", i)
	}

	// Metadata layouts are equally deterministic: the record's exact
	// encoding drives the size.
	buildMetadata := func() AccountLayout {
		plan, err := NewMintBuilder(newFakeLedger(), keys[0], keys[1], 9).
			WithMetadata(keys[1], "My Token", "MYTKN", "https://example.com/token.json").
			WithMetadataField("tier", "gold").
			Build()
		require.NoError(t, err)
		return plan.Layout
	}
	assert.Equal(t, buildMetadata(), buildMetadata())
}

func TestMintBuilder_MetadataPlanOrdering(t *testing.T) {
	keys := generateKeys(t, 3)
	ledger := newFakeLedger()

	plan, err := NewMintBuilder(ledger, keys[0], keys[1], 0).
		WithInterestRate(keys[2], 250).
		WithMetadata(keys[1], "My Token", "MYTKN", "https://example.com/token.json").
		WithMetadataField("website", "https://example.com").
		WithMetadataField("tier", "gold").
		WithGrowthHeadroom(64).
		Build()
	require.NoError(t, err)

	// The metadata pointer is added automatically and aims at the mint.
	require.Len(t, plan.BeforeBase, 2)
	pointer := plan.BeforeBase[0]
	assert.Equal(t, byte(CommandMetadataPointerExtension), pointer.Data[0])
	assert.EqualValues(t, plan.MintAccount(), pointer.Data[2+32:2+64])

	require.Len(t, plan.MetadataInit, 1)
	require.Len(t, plan.MetadataFields, 2)

	// Total order: create < before-base < base < metadata init < fields.
	instructions := plan.Instructions()
	require.Len(t, instructions, 1+2+1+1+2)
	assert.Equal(t, plan.CreateAccount, instructions[0])
	assert.Equal(t, plan.BaseInit, instructions[3])
	assert.Equal(t, plan.MetadataInit[0], instructions[4])
	assert.Equal(t, plan.MetadataFields[0], instructions[5])
	assert.Equal(t, plan.MetadataFields[1], instructions[6])

	// Allocation covers fixed extensions only; rent covers the exact
	// metadata record plus the requested headroom.
	metadata := &Metadata{
		UpdateAuthority: keys[1],
		Name:            "My Token",
		Symbol:          "MYTKN",
		URI:             "https://example.com/token.json",
		AdditionalFields: []Field{
			{Key: "website", Value: "https://example.com"},
			{Key: "tier", Value: "gold"},
		},
	}
	fixedLen := uint32(ExtensionStartOffset + 4 + 64 + 4 + 52)
	assert.Equal(t, fixedLen+uint32(metadata.TLVLen())+64, plan.Layout.TotalSize)

	created, err := system.DecompileCreateAccount(solana.NewTransaction(keys[0], instructions...).Message, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(fixedLen), created.Size)
	assert.Equal(t, plan.Layout.RequiredLamports, created.Lamports)
}

func TestMintBuilder_MetadataTooLong(t *testing.T) {
	keys := generateKeys(t, 2)
	ledger := newFakeLedger()

	_, err := NewMintBuilder(ledger, keys[0], keys[1], 0).
		WithMetadata(keys[1], "My Token", "MYTKN", strings.Repeat("u", MaxMetadataURILen+1)).
		Build()

	var tooLong *MetadataFieldTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, FieldKeyURI, tooLong.Field)
	assert.Zero(t, ledger.rentCalls)
}

func TestMintBuilder_ComputeBudgetPrefix(t *testing.T) {
	keys := generateKeys(t, 2)

	plan, err := NewMintBuilder(newFakeLedger(), keys[0], keys[1], 0).
		WithNonTransferable().
		WithComputeUnitLimit(400_000).
		Build()
	require.NoError(t, err)

	instructions := plan.Instructions()
	require.Len(t, instructions, 4)
	assert.Equal(t, instructions[0], plan.ComputeBudget[0])
	assert.Equal(t, instructions[1], plan.CreateAccount)
}

func TestAccountBuilder(t *testing.T) {
	keys := generateKeys(t, 3)
	ledger := newFakeLedger()

	plan, err := NewAccountBuilder(ledger, keys[0], keys[1], keys[2]).
		WithCpiGuard().
		WithImmutableOwner().
		WithRequiredMemoTransfers().
		Build()
	require.NoError(t, err)

	expectedSize := uint32(ExtensionStartOffset + 4 + 0 + 4 + 1 + 4 + 1)
	assert.Equal(t, expectedSize, plan.Layout.TotalSize)

	// Immutable owner is flagged before the owner is committed; the
	// owner-gated toggles follow the base initializer in call order.
	require.Len(t, plan.BeforeBase, 1)
	assert.Equal(t, byte(CommandInitializeImmutableOwner), plan.BeforeBase[0].Data[0])
	require.Len(t, plan.AfterBase, 2)
	assert.Equal(t, byte(CommandCpiGuardExtension), plan.AfterBase[0].Data[0])
	assert.Equal(t, byte(CommandMemoTransferExtension), plan.AfterBase[1].Data[0])

	instructions := plan.Instructions()
	require.Len(t, instructions, 5)
	assert.Equal(t, plan.CreateAccount, instructions[0])
	assert.Equal(t, plan.BaseInit, instructions[2])

	assert.Equal(t, byte(CommandInitializeAccount3), plan.BaseInit.Data[0])
	assert.EqualValues(t, keys[2], plan.BaseInit.Data[1:33])
}

func TestAccountBuilder_NoExtensions(t *testing.T) {
	keys := generateKeys(t, 3)

	plan, err := NewAccountBuilder(newFakeLedger(), keys[0], keys[1], keys[2]).Build()
	require.NoError(t, err)

	assert.Equal(t, uint32(AccountSize), plan.Layout.TotalSize)
	assert.Len(t, plan.Instructions(), 2)
}

func TestUpdateBuilder_GrowthFundsDelta(t *testing.T) {
	metadata, ledger := testMetadata(t)
	keys := generateKeys(t, 1)

	plan, err := NewUpdateBuilder(ledger, keys[0], metadata.Mint, metadata.UpdateAuthority).
		SetField(FieldKeyURI, strings.Repeat("v", 60)).
		Build()
	require.NoError(t, err)

	require.NotNil(t, plan.Delta)
	assert.Equal(t, uint32(20), plan.Delta.AdditionalBytes)
	require.NotNil(t, plan.Funding)

	instructions := plan.Instructions()
	require.Len(t, instructions, 2)

	transfer, err := system.DecompileTransfer(solana.NewTransaction(keys[0], instructions...).Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], transfer.Sender)
	assert.EqualValues(t, metadata.Mint, transfer.Receiver)
	assert.Equal(t, plan.Delta.AdditionalLamports, transfer.Lamports)
}

func TestUpdateBuilder_NoGrowthNoFunding(t *testing.T) {
	metadata, ledger := testMetadata(t)
	keys := generateKeys(t, 1)

	plan, err := NewUpdateBuilder(ledger, keys[0], metadata.Mint, metadata.UpdateAuthority).
		SetField(FieldKeyURI, strings.Repeat("v", 25)).
		RemoveKey("website").
		WithMemo("shrink").
		Build()
	require.NoError(t, err)

	assert.Nil(t, plan.Delta)
	assert.Nil(t, plan.Funding)

	// Field write, removal, memo.
	require.Len(t, plan.Steps, 3)
	assert.Len(t, plan.Instructions(), 3)
}

func TestUpdateBuilder_FieldTooLong(t *testing.T) {
	metadata, ledger := testMetadata(t)
	keys := generateKeys(t, 1)

	// An over-maximum reserved-key write is rejected before the mint
	// account is ever fetched.
	_, err := NewUpdateBuilder(ledger, keys[0], metadata.Mint, metadata.UpdateAuthority).
		SetField(FieldKeyURI, strings.Repeat("v", MaxMetadataURILen+1)).
		Build()

	var tooLong *MetadataFieldTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, FieldKeyURI, tooLong.Field)
	assert.Zero(t, ledger.accountCalls)
	assert.Zero(t, ledger.rentCalls)

	// Custom keys have no protocol maximum.
	_, err = NewUpdateBuilder(ledger, keys[0], metadata.Mint, metadata.UpdateAuthority).
		SetField("description", strings.Repeat("v", MaxMetadataURILen+1)).
		Build()
	require.NoError(t, err)
}

func TestUpdatePlan_Batches(t *testing.T) {
	metadata, ledger := testMetadata(t)
	keys := generateKeys(t, 1)

	builder := NewUpdateBuilder(ledger, keys[0], metadata.Mint, metadata.UpdateAuthority)
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		builder.SetField(key, strings.Repeat("v", 50))
	}

	plan, err := builder.Build()
	require.NoError(t, err)
	require.NotNil(t, plan.Funding)

	batches := plan.Batches(2)
	require.Len(t, batches, 3)

	// Funding rides in the first batch only.
	assert.Len(t, batches[0], 3)
	assert.Equal(t, *plan.Funding, batches[0][0])
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
}
