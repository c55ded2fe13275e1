package token2022

import (
	"fmt"
	"strings"
)

// UnknownExtensionError indicates a request named an extension type the
// catalog has no entry for.
type UnknownExtensionError struct {
	Type ExtensionType
}

func (e *UnknownExtensionError) Error() string {
	return fmt.Sprintf("unknown extension: %s", e.Type)
}

// DuplicateExtensionError indicates the same extension was configured more
// than once on a single build.
type DuplicateExtensionError struct {
	Type ExtensionType
}

func (e *DuplicateExtensionError) Error() string {
	return fmt.Sprintf("duplicate extension: %s", e.Type)
}

// Violation is one incompatible extension pair.
type Violation struct {
	A      ExtensionType
	B      ExtensionType
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s is incompatible with %s: %s", v.A, v.B, v.Reason)
}

// CompatibilityError carries every incompatible pair found in a requested
// extension set, not just the first.
type CompatibilityError struct {
	Violations []Violation
}

func (e *CompatibilityError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("incompatible extensions: %s", strings.Join(parts, "; "))
}

// MetadataFieldTooLongError indicates a metadata base field exceeded its
// protocol maximum.
type MetadataFieldTooLongError struct {
	Field string
	Len   int
	Max   int
}

func (e *MetadataFieldTooLongError) Error() string {
	return fmt.Sprintf("metadata field %s is %d bytes, exceeding the %d byte maximum by %d", e.Field, e.Len, e.Max, e.Len-e.Max)
}

// LedgerQueryError wraps a failed read against the ledger. These are
// transient and retryable, unlike the input errors above; retry policy
// belongs to the caller.
type LedgerQueryError struct {
	Op  string
	Err error
}

func (e *LedgerQueryError) Error() string {
	return fmt.Sprintf("ledger query %s failed: %v", e.Op, e.Err)
}

func (e *LedgerQueryError) Unwrap() error {
	return e.Err
}
