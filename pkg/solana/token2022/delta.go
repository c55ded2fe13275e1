package token2022

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/token22-sdk/pkg/solana"
)

// FieldUpdate is one proposed metadata field write.
type FieldUpdate struct {
	Key   string
	Value string
}

// StorageDelta is the minimal extra allocation a set of field updates
// needs. A nil *StorageDelta means no allocation (and no funding transfer)
// is required.
type StorageDelta struct {
	AdditionalBytes    uint32
	AdditionalLamports uint64

	// Estimated marks a conservative whole-field estimate produced when
	// the current on-chain record could not be fetched. Callers should
	// surface this: the real cost may be lower.
	Estimated bool
}

const (
	// A newly created field stores a length-prefixed key and a
	// length-prefixed value; the key side is pure overhead relative to
	// updating an existing field.
	newFieldOverhead = 4 + 4

	// One proportional padding is added per batch to absorb encoding
	// edge cases, bounded so large batches don't over-provision.
	deltaPaddingDivisor = 32
	maxDeltaPadding     = 64
)

// DeltaAllocator prices metadata updates against the current on-chain
// record, so callers fund only genuinely new bytes instead of
// re-provisioning the whole structure.
type DeltaAllocator struct {
	log    *logrus.Entry
	ledger Ledger
}

func NewDeltaAllocator(ledger Ledger) *DeltaAllocator {
	return &DeltaAllocator{
		log:    logrus.StandardLogger().WithField("type", "token2022/deltaallocator"),
		ledger: ledger,
	}
}

// Compute returns the minimal storage delta for applying updates to the
// metadata record stored on mint. Updates are applied in order against a
// working copy, so a batch that touches the same key twice is priced on
// the net growth. Returns (nil, nil) when no allocation is needed.
func (a *DeltaAllocator) Compute(mint ed25519.PublicKey, updates []FieldUpdate) (*StorageDelta, error) {
	if len(updates) == 0 {
		return nil, nil
	}

	current, err := a.fetchMetadata(mint)
	if err != nil {
		if errors.Is(err, solana.ErrNoAccountInfo) || errors.Is(err, errNoMetadata) {
			return a.estimate(mint, updates, err)
		}
		return nil, err
	}

	totalDelta := 0
	for _, u := range updates {
		totalDelta += fieldDelta(current, u)
		current.SetField(u.Key, u.Value)
	}

	if totalDelta < 0 {
		panic(fmt.Sprintf("negative storage delta computed: %d", totalDelta))
	}
	if totalDelta == 0 {
		return nil, nil
	}

	totalDelta += batchPadding(totalDelta)

	lamports, err := a.priceDelta(totalDelta)
	if err != nil {
		return nil, err
	}

	return &StorageDelta{
		AdditionalBytes:    uint32(totalDelta),
		AdditionalLamports: lamports,
	}, nil
}

var errNoMetadata = errors.New("mint carries no token metadata")

func (a *DeltaAllocator) fetchMetadata(mint ed25519.PublicKey) (*Metadata, error) {
	info, err := a.ledger.GetAccountInfo(mint, solana.CommitmentFinalized)
	if err != nil {
		if errors.Is(err, solana.ErrNoAccountInfo) {
			return nil, err
		}
		return nil, &LedgerQueryError{Op: "getAccountInfo", Err: err}
	}

	data, ok, err := GetExtensionData(info.Data, ExtensionTokenMetadata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk mint extensions")
	}
	if !ok {
		return nil, errNoMetadata
	}

	var metadata Metadata
	if err := metadata.Unmarshal(data); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal metadata")
	}
	return &metadata, nil
}

// estimate is the fallback when the current record can't be read: price
// every update as a brand-new field. This is a cost-estimation aid, not a
// correctness path, so over-provisioning is acceptable; the Estimated flag
// lets callers tell the two apart.
func (a *DeltaAllocator) estimate(mint ed25519.PublicKey, updates []FieldUpdate, cause error) (*StorageDelta, error) {
	a.log.WithError(cause).
		WithField("mint", base58.Encode(mint)).
		Warn("falling back to conservative storage estimate")

	totalDelta := 0
	for _, u := range updates {
		totalDelta += newFieldOverhead + len(u.Key) + len(u.Value)
	}
	totalDelta += batchPadding(totalDelta)

	lamports, err := a.priceDelta(totalDelta)
	if err != nil {
		return nil, err
	}

	return &StorageDelta{
		AdditionalBytes:    uint32(totalDelta),
		AdditionalLamports: lamports,
		Estimated:          true,
	}, nil
}

// priceDelta converts a byte delta to lamports at the ledger's per-byte
// rent rate. The rate is derived from two rent queries rather than
// hardcoded: rent scales linearly with size, so the flat base cancels.
func (a *DeltaAllocator) priceDelta(deltaBytes int) (uint64, error) {
	withDelta, err := a.ledger.GetMinimumBalanceForRentExemption(uint64(deltaBytes))
	if err != nil {
		return 0, &LedgerQueryError{Op: "getMinimumBalanceForRentExemption", Err: err}
	}
	base, err := a.ledger.GetMinimumBalanceForRentExemption(0)
	if err != nil {
		return 0, &LedgerQueryError{Op: "getMinimumBalanceForRentExemption", Err: err}
	}

	return withDelta - base, nil
}

func fieldDelta(current *Metadata, u FieldUpdate) int {
	existing, ok := current.Field(u.Key)
	if !ok {
		// New field: pay for the value plus the key bookkeeping.
		return newFieldOverhead + len(u.Key) + len(u.Value)
	}

	// Shrinking or equal-length writes are free: the program does not
	// reclaim space on shrink, so no new allocation is ever required.
	if len(u.Value) <= len(existing) {
		return 0
	}
	return len(u.Value) - len(existing)
}

func batchPadding(totalDelta int) int {
	padding := totalDelta / deltaPaddingDivisor
	if padding > maxDeltaPadding {
		padding = maxDeltaPadding
	}
	return padding
}
