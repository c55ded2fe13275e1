package token2022

import "fmt"

// ExtensionType is the TLV type tag identifying an extension inside a
// token-2022 mint or token account.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/mod.rs
type ExtensionType uint16

const (
	ExtensionUninitialized ExtensionType = iota
	ExtensionTransferFeeConfig
	ExtensionTransferFeeAmount
	ExtensionMintCloseAuthority
	ExtensionConfidentialTransferMint
	ExtensionConfidentialTransferAccount
	ExtensionDefaultAccountState
	ExtensionImmutableOwner
	ExtensionMemoTransfer
	ExtensionNonTransferable
	ExtensionInterestBearingConfig
	ExtensionCpiGuard
	ExtensionPermanentDelegate
	ExtensionNonTransferableAccount
	ExtensionTransferHook
	ExtensionTransferHookAccount
	ExtensionConfidentialTransferFeeConfig
	ExtensionConfidentialTransferFeeAmount
	ExtensionMetadataPointer
	ExtensionTokenMetadata
	ExtensionGroupPointer
	ExtensionTokenGroup
	ExtensionGroupMemberPointer
	ExtensionTokenGroupMember
)

func (t ExtensionType) String() string {
	switch t {
	case ExtensionUninitialized:
		return "uninitialized"
	case ExtensionTransferFeeConfig:
		return "transfer_fee_config"
	case ExtensionTransferFeeAmount:
		return "transfer_fee_amount"
	case ExtensionMintCloseAuthority:
		return "mint_close_authority"
	case ExtensionConfidentialTransferMint:
		return "confidential_transfer_mint"
	case ExtensionConfidentialTransferAccount:
		return "confidential_transfer_account"
	case ExtensionDefaultAccountState:
		return "default_account_state"
	case ExtensionImmutableOwner:
		return "immutable_owner"
	case ExtensionMemoTransfer:
		return "memo_transfer"
	case ExtensionNonTransferable:
		return "non_transferable"
	case ExtensionInterestBearingConfig:
		return "interest_bearing_config"
	case ExtensionCpiGuard:
		return "cpi_guard"
	case ExtensionPermanentDelegate:
		return "permanent_delegate"
	case ExtensionNonTransferableAccount:
		return "non_transferable_account"
	case ExtensionTransferHook:
		return "transfer_hook"
	case ExtensionTransferHookAccount:
		return "transfer_hook_account"
	case ExtensionConfidentialTransferFeeConfig:
		return "confidential_transfer_fee_config"
	case ExtensionConfidentialTransferFeeAmount:
		return "confidential_transfer_fee_amount"
	case ExtensionMetadataPointer:
		return "metadata_pointer"
	case ExtensionTokenMetadata:
		return "token_metadata"
	case ExtensionGroupPointer:
		return "group_pointer"
	case ExtensionTokenGroup:
		return "token_group"
	case ExtensionGroupMemberPointer:
		return "group_member_pointer"
	case ExtensionTokenGroupMember:
		return "token_group_member"
	default:
		return fmt.Sprintf("extension(%d)", uint16(t))
	}
}

// Phase declares where an extension's initializer must sit relative to the
// base InitializeMint2/InitializeAccount3 instruction.
type Phase uint8

const (
	PhaseBeforeBase Phase = iota
	PhaseAfterBase
)

// Target declares whether an extension lives on a mint or a token account.
type Target uint8

const (
	TargetMint Target = iota
	TargetAccount
)

// CatalogEntry describes how an extension participates in account layout
// and instruction ordering.
type CatalogEntry struct {
	Type ExtensionType

	// FixedLen is the TLV payload width in bytes. Meaningless when
	// Variable is set.
	FixedLen int

	// Variable marks extensions whose payload width depends on caller
	// data and must be computed from the encoded record.
	Variable bool

	Phase  Phase
	Target Target
}

// The catalog covers the extensions this library can initialize client-side.
// Account-state counterparts written by the program itself (transfer fee
// amounts, hook flags) are intentionally absent: they are never part of a
// creation plan.
var catalog = map[ExtensionType]CatalogEntry{
	ExtensionTransferFeeConfig:        {Type: ExtensionTransferFeeConfig, FixedLen: 108, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionMintCloseAuthority:       {Type: ExtensionMintCloseAuthority, FixedLen: 32, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionConfidentialTransferMint: {Type: ExtensionConfidentialTransferMint, FixedLen: 65, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionDefaultAccountState:      {Type: ExtensionDefaultAccountState, FixedLen: 1, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionImmutableOwner:           {Type: ExtensionImmutableOwner, FixedLen: 0, Phase: PhaseBeforeBase, Target: TargetAccount},
	ExtensionMemoTransfer:             {Type: ExtensionMemoTransfer, FixedLen: 1, Phase: PhaseAfterBase, Target: TargetAccount},
	ExtensionNonTransferable:          {Type: ExtensionNonTransferable, FixedLen: 0, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionInterestBearingConfig:    {Type: ExtensionInterestBearingConfig, FixedLen: 52, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionCpiGuard:                 {Type: ExtensionCpiGuard, FixedLen: 1, Phase: PhaseAfterBase, Target: TargetAccount},
	ExtensionPermanentDelegate:        {Type: ExtensionPermanentDelegate, FixedLen: 32, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionTransferHook:             {Type: ExtensionTransferHook, FixedLen: 64, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionMetadataPointer:          {Type: ExtensionMetadataPointer, FixedLen: 64, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionTokenMetadata:            {Type: ExtensionTokenMetadata, Variable: true, Phase: PhaseAfterBase, Target: TargetMint},
	ExtensionGroupPointer:             {Type: ExtensionGroupPointer, FixedLen: 64, Phase: PhaseBeforeBase, Target: TargetMint},
	ExtensionGroupMemberPointer:       {Type: ExtensionGroupMemberPointer, FixedLen: 64, Phase: PhaseBeforeBase, Target: TargetMint},
}

// Lookup returns the catalog entry for an extension type. Types the library
// cannot compose client-side fail with UnknownExtensionError.
func Lookup(t ExtensionType) (CatalogEntry, error) {
	entry, ok := catalog[t]
	if !ok {
		return CatalogEntry{}, &UnknownExtensionError{Type: t}
	}
	return entry, nil
}
