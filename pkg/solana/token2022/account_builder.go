package token2022

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/pkg/errors"

	"github.com/code-payments/token22-sdk/pkg/solana"
	"github.com/code-payments/token22-sdk/pkg/solana/system"
)

// AccountPlan is the ordered output of one token account build.
type AccountPlan struct {
	// Account is the freshly generated token account keypair.
	Account ed25519.PrivateKey

	Layout AccountLayout

	CreateAccount solana.Instruction
	BeforeBase    []solana.Instruction
	BaseInit      solana.Instruction
	AfterBase     []solana.Instruction
}

// TokenAccount returns the public address of the generated account.
func (p *AccountPlan) TokenAccount() ed25519.PublicKey {
	return p.Account.Public().(ed25519.PublicKey)
}

func (p *AccountPlan) Instructions() []solana.Instruction {
	instructions := make([]solana.Instruction, 0, 2+len(p.BeforeBase)+len(p.AfterBase))
	instructions = append(instructions, p.CreateAccount)
	instructions = append(instructions, p.BeforeBase...)
	instructions = append(instructions, p.BaseInit)
	instructions = append(instructions, p.AfterBase...)
	return instructions
}

func (p *AccountPlan) Signers() []ed25519.PrivateKey {
	return []ed25519.PrivateKey{p.Account}
}

// AccountBuilder assembles a token account creation plan for a token-2022
// mint. Account-side extensions split the same way mint extensions do: the
// immutable owner flag must be written before InitializeAccount3 commits
// the owner, while the owner-gated toggles (CPI guard, required memos) can
// only run once the account exists and its owner can sign.
type AccountBuilder struct {
	ledger Ledger

	payer ed25519.PublicKey
	mint  ed25519.PublicKey
	owner ed25519.PublicKey

	extensions []ExtensionType

	errs []error
}

func NewAccountBuilder(ledger Ledger, payer, mint, owner ed25519.PublicKey) *AccountBuilder {
	return &AccountBuilder{
		ledger: ledger,
		payer:  payer,
		mint:   mint,
		owner:  owner,
	}
}

func (b *AccountBuilder) WithImmutableOwner() *AccountBuilder {
	return b.addExtension(ExtensionImmutableOwner)
}

func (b *AccountBuilder) WithCpiGuard() *AccountBuilder {
	return b.addExtension(ExtensionCpiGuard)
}

func (b *AccountBuilder) WithRequiredMemoTransfers() *AccountBuilder {
	return b.addExtension(ExtensionMemoTransfer)
}

func (b *AccountBuilder) addExtension(t ExtensionType) *AccountBuilder {
	for _, existing := range b.extensions {
		if existing == t {
			b.errs = append(b.errs, &DuplicateExtensionError{Type: t})
			return b
		}
	}

	b.extensions = append(b.extensions, t)
	return b
}

// Build validates the configured set and emits the account creation plan.
// Performs exactly one external read (the rent query).
func (b *AccountBuilder) Build() (*AccountPlan, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	if err := CheckCompatibility(b.extensions); err != nil {
		return nil, err
	}

	beforeBase, afterBase, err := PartitionByPhase(b.extensions)
	if err != nil {
		return nil, err
	}

	accountLen, err := AccountLenForExtensions(b.extensions)
	if err != nil {
		return nil, err
	}

	lamports, err := b.ledger.GetMinimumBalanceForRentExemption(uint64(accountLen))
	if err != nil {
		return nil, &LedgerQueryError{Op: "getMinimumBalanceForRentExemption", Err: err}
	}

	accountPub, accountPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate account keypair")
	}

	plan := &AccountPlan{
		Account: accountPriv,
		Layout: AccountLayout{
			TotalSize:        uint32(accountLen),
			RequiredLamports: lamports,
		},
		CreateAccount: system.CreateAccount(b.payer, accountPub, ProgramKey, lamports, uint64(accountLen)),
		BaseInit:      InitializeAccount3(accountPub, b.mint, b.owner),
	}

	for _, t := range beforeBase {
		switch t {
		case ExtensionImmutableOwner:
			plan.BeforeBase = append(plan.BeforeBase, InitializeImmutableOwner(accountPub))
		default:
			return nil, &UnknownExtensionError{Type: t}
		}
	}
	for _, t := range afterBase {
		switch t {
		case ExtensionCpiGuard:
			plan.AfterBase = append(plan.AfterBase, EnableCpiGuard(accountPub, b.owner))
		case ExtensionMemoTransfer:
			plan.AfterBase = append(plan.AfterBase, EnableRequiredMemoTransfers(accountPub, b.owner))
		default:
			return nil, &UnknownExtensionError{Type: t}
		}
	}

	return plan, nil
}
