package token2022

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/extension/mod.rs
const (
	// MintSize is the byte size of a mint with no extensions.
	MintSize = 82

	// AccountSize is the byte size of a token account with no extensions.
	AccountSize = 165

	// Any account carrying extensions is padded to AccountSize and
	// tagged with a one-byte account type so mints and token accounts
	// of equal length can be told apart.
	accountTypeSize = 1

	// ExtensionStartOffset is where the first TLV entry begins.
	ExtensionStartOffset = AccountSize + accountTypeSize

	// Each TLV entry is prefixed by a u16 type tag and a u16 length.
	tlvHeaderSize = 4
)

// AccountLayout is the derived size and rent cost for one build. It is
// recomputed on every build and never cached: extension sets change.
type AccountLayout struct {
	TotalSize        uint32
	RequiredLamports uint64
}

// MintLenForExtensions returns the allocation size of a mint carrying the
// given fixed-width extensions. Variable-width extensions (token metadata)
// are excluded: their TLV entries are appended by the program on
// initialization, funded by lamports rather than pre-allocated space.
func MintLenForExtensions(types []ExtensionType) (int, error) {
	return lenForExtensions(types, TargetMint, MintSize)
}

// AccountLenForExtensions returns the allocation size of a token account
// carrying the given extensions.
func AccountLenForExtensions(types []ExtensionType) (int, error) {
	return lenForExtensions(types, TargetAccount, AccountSize)
}

func lenForExtensions(types []ExtensionType, target Target, baseSize int) (int, error) {
	if len(types) == 0 {
		return baseSize, nil
	}

	total := ExtensionStartOffset
	for _, t := range types {
		entry, err := Lookup(t)
		if err != nil {
			return 0, err
		}
		if entry.Target != target {
			return 0, &UnknownExtensionError{Type: t}
		}
		if entry.Variable {
			continue
		}

		total += tlvHeaderSize + entry.FixedLen
	}

	return total, nil
}

// computeLayout derives the full account layout for a creation build:
// fixed extension space, the exact metadata TLV size (when present), and
// caller-requested growth headroom, priced by one rent query.
func computeLayout(ledger Ledger, fixedLen int, metadata *Metadata, headroom uint32) (AccountLayout, error) {
	total := uint32(fixedLen)

	if metadata != nil {
		if err := metadata.Validate(); err != nil {
			return AccountLayout{}, err
		}
		total += uint32(metadata.TLVLen()) + headroom
	}

	lamports, err := ledger.GetMinimumBalanceForRentExemption(uint64(total))
	if err != nil {
		return AccountLayout{}, &LedgerQueryError{Op: "getMinimumBalanceForRentExemption", Err: err}
	}

	return AccountLayout{
		TotalSize:        total,
		RequiredLamports: lamports,
	}, nil
}
