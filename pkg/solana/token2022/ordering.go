package token2022

import "fmt"

// PartitionByPhase splits a validated extension set into the initializers
// that must run before the base initializer and those that must run after.
// The partition is stable: each bucket preserves the caller's insertion
// order, which keeps plans reproducible. No extension orders against
// another extension, only against the base initializer, so two buckets
// suffice.
func PartitionByPhase(types []ExtensionType) (beforeBase, afterBase []ExtensionType, err error) {
	for _, t := range types {
		entry, err := Lookup(t)
		if err != nil {
			return nil, nil, err
		}

		switch entry.Phase {
		case PhaseBeforeBase:
			beforeBase = append(beforeBase, t)
		case PhaseAfterBase:
			afterBase = append(afterBase, t)
		default:
			// A phase outside the enum is a defect in the catalog,
			// not a runtime input.
			panic(fmt.Sprintf("catalog entry %s has invalid phase %d", t, entry.Phase))
		}
	}

	return beforeBase, afterBase, nil
}
