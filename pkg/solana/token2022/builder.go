package token2022

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/pkg/errors"

	"github.com/code-payments/token22-sdk/pkg/solana"
	compute_budget "github.com/code-payments/token22-sdk/pkg/solana/computebudget"
	"github.com/code-payments/token22-sdk/pkg/solana/system"
)

// MintPlan is the ordered output of one mint build. Sections are exposed
// separately so callers and tests can inspect the ordering; Instructions
// flattens them in execution order.
type MintPlan struct {
	// Mint is the freshly generated mint keypair. The builder generates
	// it since the address is otherwise meaningless to the caller.
	Mint ed25519.PrivateKey

	Layout AccountLayout

	ComputeBudget  []solana.Instruction
	CreateAccount  solana.Instruction
	BeforeBase     []solana.Instruction
	BaseInit       solana.Instruction
	AfterBase      []solana.Instruction
	MetadataInit   []solana.Instruction
	MetadataFields []solana.Instruction
}

// MintAccount returns the public address of the generated mint.
func (p *MintPlan) MintAccount() ed25519.PublicKey {
	return p.Mint.Public().(ed25519.PublicKey)
}

// Instructions flattens the plan in execution order.
func (p *MintPlan) Instructions() []solana.Instruction {
	instructions := make([]solana.Instruction, 0, len(p.ComputeBudget)+2+len(p.BeforeBase)+len(p.AfterBase)+len(p.MetadataInit)+len(p.MetadataFields))
	instructions = append(instructions, p.ComputeBudget...)
	instructions = append(instructions, p.CreateAccount)
	instructions = append(instructions, p.BeforeBase...)
	instructions = append(instructions, p.BaseInit)
	instructions = append(instructions, p.AfterBase...)
	instructions = append(instructions, p.MetadataInit...)
	instructions = append(instructions, p.MetadataFields...)
	return instructions
}

// Signers returns the keys that must sign beyond the payer.
func (p *MintPlan) Signers() []ed25519.PrivateKey {
	return []ed25519.PrivateKey{p.Mint}
}

type extensionInitializer func(mint ed25519.PublicKey) solana.Instruction

// MintBuilder accumulates extension configuration and assembles a mint
// creation plan. Each With method returns the builder for chaining;
// configuration errors surface on Build, which performs exactly one
// external read (the rent query) and never returns a partial plan.
type MintBuilder struct {
	ledger Ledger

	payer           ed25519.PublicKey
	mintAuthority   ed25519.PublicKey
	freezeAuthority ed25519.PublicKey
	decimals        uint8

	extensions   []ExtensionType
	initializers map[ExtensionType]extensionInitializer

	metadata         *Metadata
	headroom         uint32
	computeUnitLimit uint32

	errs []error
}

func NewMintBuilder(ledger Ledger, payer, mintAuthority ed25519.PublicKey, decimals uint8) *MintBuilder {
	return &MintBuilder{
		ledger:        ledger,
		payer:         payer,
		mintAuthority: mintAuthority,
		decimals:      decimals,
		initializers:  make(map[ExtensionType]extensionInitializer),
	}
}

func (b *MintBuilder) WithFreezeAuthority(authority ed25519.PublicKey) *MintBuilder {
	b.freezeAuthority = authority
	return b
}

func (b *MintBuilder) WithTransferFee(configAuthority, withdrawAuthority ed25519.PublicKey, basisPoints uint16, maxFee uint64) *MintBuilder {
	return b.addExtension(ExtensionTransferFeeConfig, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeTransferFeeConfig(mint, configAuthority, withdrawAuthority, basisPoints, maxFee)
	})
}

func (b *MintBuilder) WithMintCloseAuthority(closeAuthority ed25519.PublicKey) *MintBuilder {
	return b.addExtension(ExtensionMintCloseAuthority, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeMintCloseAuthority(mint, closeAuthority)
	})
}

func (b *MintBuilder) WithConfidentialTransfers(authority, auditorElGamal ed25519.PublicKey, autoApproveNewAccounts bool) *MintBuilder {
	return b.addExtension(ExtensionConfidentialTransferMint, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeConfidentialTransferMint(mint, authority, auditorElGamal, autoApproveNewAccounts)
	})
}

func (b *MintBuilder) WithDefaultAccountState(state AccountState) *MintBuilder {
	return b.addExtension(ExtensionDefaultAccountState, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeDefaultAccountState(mint, state)
	})
}

func (b *MintBuilder) WithNonTransferable() *MintBuilder {
	return b.addExtension(ExtensionNonTransferable, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeNonTransferableMint(mint)
	})
}

func (b *MintBuilder) WithInterestRate(rateAuthority ed25519.PublicKey, rate int16) *MintBuilder {
	return b.addExtension(ExtensionInterestBearingConfig, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeInterestBearingMint(mint, rateAuthority, rate)
	})
}

func (b *MintBuilder) WithPermanentDelegate(delegate ed25519.PublicKey) *MintBuilder {
	return b.addExtension(ExtensionPermanentDelegate, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializePermanentDelegate(mint, delegate)
	})
}

func (b *MintBuilder) WithTransferHook(authority, hookProgram ed25519.PublicKey) *MintBuilder {
	return b.addExtension(ExtensionTransferHook, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeTransferHook(mint, authority, hookProgram)
	})
}

// WithMetadataPointer aims the mint's metadata pointer at an external
// metadata account. Mints storing their own metadata should use
// WithMetadata instead, which adds a self-referencing pointer.
func (b *MintBuilder) WithMetadataPointer(authority, metadataAddress ed25519.PublicKey) *MintBuilder {
	return b.addExtension(ExtensionMetadataPointer, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeMetadataPointer(mint, authority, metadataAddress)
	})
}

func (b *MintBuilder) WithGroupPointer(authority, groupAddress ed25519.PublicKey) *MintBuilder {
	return b.addExtension(ExtensionGroupPointer, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeGroupPointer(mint, authority, groupAddress)
	})
}

func (b *MintBuilder) WithGroupMemberPointer(authority, memberAddress ed25519.PublicKey) *MintBuilder {
	return b.addExtension(ExtensionGroupMemberPointer, func(mint ed25519.PublicKey) solana.Instruction {
		return InitializeGroupMemberPointer(mint, authority, memberAddress)
	})
}

// WithMetadata stores a token-metadata record on the mint itself. A
// self-referencing metadata pointer is added automatically unless one was
// configured explicitly.
func (b *MintBuilder) WithMetadata(updateAuthority ed25519.PublicKey, name, symbol, uri string) *MintBuilder {
	if b.metadata != nil {
		b.errs = append(b.errs, &DuplicateExtensionError{Type: ExtensionTokenMetadata})
		return b
	}

	b.metadata = &Metadata{
		UpdateAuthority: updateAuthority,
		Name:            name,
		Symbol:          symbol,
		URI:             uri,
	}
	b.extensions = append(b.extensions, ExtensionTokenMetadata)
	return b
}

// WithMetadataField adds one custom key/value pair to the metadata record.
// Requires WithMetadata first.
func (b *MintBuilder) WithMetadataField(key, value string) *MintBuilder {
	if b.metadata == nil {
		b.errs = append(b.errs, errors.New("metadata fields require WithMetadata"))
		return b
	}

	b.metadata.SetField(key, value)
	return b
}

// WithGrowthHeadroom reserves extra rent-funded bytes beyond the exact
// metadata encoding, for anticipated future field growth. Creation path
// only; updates are priced on the literal delta.
func (b *MintBuilder) WithGrowthHeadroom(bytes uint32) *MintBuilder {
	b.headroom = bytes
	return b
}

func (b *MintBuilder) WithComputeUnitLimit(units uint32) *MintBuilder {
	b.computeUnitLimit = units
	return b
}

func (b *MintBuilder) addExtension(t ExtensionType, init extensionInitializer) *MintBuilder {
	if _, exists := b.initializers[t]; exists {
		b.errs = append(b.errs, &DuplicateExtensionError{Type: t})
		return b
	}

	b.extensions = append(b.extensions, t)
	b.initializers[t] = init
	return b
}

// Build validates the configured set, computes layout and rent, and emits
// the full creation plan. Any validation failure aborts the build before
// the rent query; no partial plan is ever returned.
func (b *MintBuilder) Build() (*MintPlan, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	extensions := b.extensions
	if b.metadata != nil {
		if _, exists := b.initializers[ExtensionMetadataPointer]; !exists {
			// The record lives on the mint, so the pointer aims at
			// the mint itself. Prepend: pointers are before-base and
			// the TLV slot should precede the variable record.
			withPointer := make([]ExtensionType, 0, len(extensions)+1)
			withPointer = append(withPointer, ExtensionMetadataPointer)
			withPointer = append(withPointer, extensions...)
			extensions = withPointer

			authority := b.metadata.UpdateAuthority
			b.initializers[ExtensionMetadataPointer] = func(mint ed25519.PublicKey) solana.Instruction {
				return InitializeMetadataPointer(mint, authority, mint)
			}
		}

		if err := b.metadata.Validate(); err != nil {
			return nil, err
		}
	}

	if err := CheckCompatibility(extensions); err != nil {
		return nil, err
	}

	beforeBase, afterBase, err := PartitionByPhase(extensions)
	if err != nil {
		return nil, err
	}

	mintLen, err := MintLenForExtensions(extensions)
	if err != nil {
		return nil, err
	}

	layout, err := computeLayout(b.ledger, mintLen, b.metadata, b.headroom)
	if err != nil {
		return nil, err
	}

	mintPub, mintPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate mint keypair")
	}

	plan := &MintPlan{
		Mint:   mintPriv,
		Layout: layout,
		// The account is allocated at its fixed-extension size; the
		// funded lamports cover the full layout so the program can
		// grow the account when the metadata record is written.
		CreateAccount: system.CreateAccount(b.payer, mintPub, ProgramKey, layout.RequiredLamports, uint64(mintLen)),
		BaseInit:      InitializeMint2(mintPub, b.mintAuthority, b.freezeAuthority, b.decimals),
	}

	if b.computeUnitLimit > 0 {
		plan.ComputeBudget = append(plan.ComputeBudget, compute_budget.SetComputeUnitLimit(b.computeUnitLimit))
	}

	for _, t := range beforeBase {
		plan.BeforeBase = append(plan.BeforeBase, b.initializers[t](mintPub))
	}
	for _, t := range afterBase {
		if t == ExtensionTokenMetadata {
			continue
		}
		plan.AfterBase = append(plan.AfterBase, b.initializers[t](mintPub))
	}

	if b.metadata != nil {
		plan.MetadataInit = append(plan.MetadataInit, InitializeMetadata(
			mintPub,
			b.metadata.UpdateAuthority,
			b.mintAuthority,
			b.metadata.Name,
			b.metadata.Symbol,
			b.metadata.URI,
		))
		for _, f := range b.metadata.AdditionalFields {
			plan.MetadataFields = append(plan.MetadataFields, UpdateMetadataField(
				mintPub,
				b.metadata.UpdateAuthority,
				f.Key,
				f.Value,
			))
		}
	}

	return plan, nil
}
