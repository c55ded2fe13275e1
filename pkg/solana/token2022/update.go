package token2022

import (
	"crypto/ed25519"

	"github.com/code-payments/token22-sdk/pkg/solana"
	"github.com/code-payments/token22-sdk/pkg/solana/memo"
	"github.com/code-payments/token22-sdk/pkg/solana/system"
)

// UpdatePlan is the output of one metadata update build: the priced delta,
// the funding transfer covering it (absent when no growth is needed), and
// the ordered field steps.
type UpdatePlan struct {
	// Delta is nil when the update fits in the existing allocation, in
	// which case Funding is nil too: callers must not transfer lamports
	// when nothing needs funding.
	Delta   *StorageDelta
	Funding *solana.Instruction

	Steps []solana.Instruction
}

// Instructions flattens the plan in execution order.
func (p *UpdatePlan) Instructions() []solana.Instruction {
	instructions := make([]solana.Instruction, 0, 1+len(p.Steps))
	if p.Funding != nil {
		instructions = append(instructions, *p.Funding)
	}
	instructions = append(instructions, p.Steps...)
	return instructions
}

// Batches splits the steps into sequential transaction-sized chunks of at
// most maxSteps field operations each. The funding transfer, when present,
// rides in the first batch so later batches never write unfunded bytes.
// Batches are not atomic with respect to each other; a partially applied
// sequence is recovered by rebuilding the remaining updates against the
// now-current record, not by rollback.
func (p *UpdatePlan) Batches(maxSteps int) [][]solana.Instruction {
	if maxSteps <= 0 || len(p.Steps) == 0 {
		return nil
	}

	var batches [][]solana.Instruction
	for start := 0; start < len(p.Steps); start += maxSteps {
		end := start + maxSteps
		if end > len(p.Steps) {
			end = len(p.Steps)
		}

		batch := make([]solana.Instruction, 0, end-start+1)
		if start == 0 && p.Funding != nil {
			batch = append(batch, *p.Funding)
		}
		batch = append(batch, p.Steps[start:end]...)
		batches = append(batches, batch)
	}

	return batches
}

// UpdateBuilder assembles metadata update plans against an existing mint.
// The delta allocator prices the batch so the funding transfer covers only
// genuinely new bytes.
type UpdateBuilder struct {
	allocator *DeltaAllocator

	payer           ed25519.PublicKey
	mint            ed25519.PublicKey
	updateAuthority ed25519.PublicKey

	updates  []FieldUpdate
	removals []string
	memoText string
}

func NewUpdateBuilder(ledger Ledger, payer, mint, updateAuthority ed25519.PublicKey) *UpdateBuilder {
	return &UpdateBuilder{
		allocator:       NewDeltaAllocator(ledger),
		payer:           payer,
		mint:            mint,
		updateAuthority: updateAuthority,
	}
}

// SetField stages one field write. Reserved keys (name, symbol, uri)
// address the base record.
func (b *UpdateBuilder) SetField(key, value string) *UpdateBuilder {
	b.updates = append(b.updates, FieldUpdate{Key: key, Value: value})
	return b
}

// RemoveKey stages removal of one custom field. Removals never grow the
// account, so they don't participate in delta pricing.
func (b *UpdateBuilder) RemoveKey(key string) *UpdateBuilder {
	b.removals = append(b.removals, key)
	return b
}

// WithMemo attaches a memo instruction to the end of the plan.
func (b *UpdateBuilder) WithMemo(text string) *UpdateBuilder {
	b.memoText = text
	return b
}

// Build prices the staged updates and emits the plan. Field writes keep
// their staged order, followed by removals, followed by the memo.
func (b *UpdateBuilder) Build() (*UpdatePlan, error) {
	if err := validateFieldUpdates(b.updates); err != nil {
		return nil, err
	}

	delta, err := b.allocator.Compute(b.mint, b.updates)
	if err != nil {
		return nil, err
	}

	plan := &UpdatePlan{Delta: delta}

	if delta != nil {
		funding := system.Transfer(b.payer, b.mint, delta.AdditionalLamports)
		plan.Funding = &funding
	}

	for _, u := range b.updates {
		plan.Steps = append(plan.Steps, UpdateMetadataField(b.mint, b.updateAuthority, u.Key, u.Value))
	}
	for _, key := range b.removals {
		plan.Steps = append(plan.Steps, RemoveMetadataKey(b.mint, b.updateAuthority, key, true))
	}
	if b.memoText != "" {
		plan.Steps = append(plan.Steps, memo.Instruction(b.memoText))
	}

	return plan, nil
}

// validateFieldUpdates enforces the protocol maxima on reserved-key writes
// before any account is fetched. Custom keys have no protocol maximum.
func validateFieldUpdates(updates []FieldUpdate) error {
	for _, u := range updates {
		var max int
		switch u.Key {
		case FieldKeyName:
			max = MaxMetadataNameLen
		case FieldKeySymbol:
			max = MaxMetadataSymbolLen
		case FieldKeyURI:
			max = MaxMetadataURILen
		default:
			continue
		}

		if len(u.Value) > max {
			return &MetadataFieldTooLongError{Field: u.Key, Len: len(u.Value), Max: max}
		}
	}
	return nil
}
