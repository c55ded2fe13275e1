package token2022

// The incompatibility table is symmetric: a listed (a, b) pair also
// forbids (b, a).
//
// Reference: https://spl.solana.com/token-2022/extensions
var incompatiblePairs = []Violation{
	{
		A:      ExtensionNonTransferable,
		B:      ExtensionTransferFeeConfig,
		Reason: "a non-transferable mint cannot collect transfer fees",
	},
	{
		A:      ExtensionNonTransferable,
		B:      ExtensionTransferHook,
		Reason: "a non-transferable mint never invokes a transfer hook",
	},
	{
		A:      ExtensionNonTransferable,
		B:      ExtensionConfidentialTransferMint,
		Reason: "a non-transferable mint cannot support confidential transfers",
	},
	{
		A:      ExtensionConfidentialTransferMint,
		B:      ExtensionTransferFeeConfig,
		Reason: "confidential transfer amounts are hidden from fee assessment",
	},
	{
		A:      ExtensionConfidentialTransferMint,
		B:      ExtensionTransferHook,
		Reason: "confidential transfer amounts are hidden from hook programs",
	},
	{
		A:      ExtensionConfidentialTransferMint,
		B:      ExtensionPermanentDelegate,
		Reason: "a permanent delegate cannot move confidential balances",
	},
}

// CheckCompatibility evaluates every pair in the requested extension set
// against the incompatibility table. All violations are collected so the
// caller can fix the full set in one pass. Duplicates are rejected upstream.
func CheckCompatibility(types []ExtensionType) error {
	var violations []Violation
	for i := 0; i < len(types); i++ {
		for j := i + 1; j < len(types); j++ {
			if v, ok := conflict(types[i], types[j]); ok {
				violations = append(violations, v)
			}
		}
	}

	if len(violations) > 0 {
		return &CompatibilityError{Violations: violations}
	}
	return nil
}

func conflict(a, b ExtensionType) (Violation, bool) {
	for _, rule := range incompatiblePairs {
		if (rule.A == a && rule.B == b) || (rule.A == b && rule.B == a) {
			return Violation{A: a, B: b, Reason: rule.Reason}, true
		}
	}
	return Violation{}, false
}
