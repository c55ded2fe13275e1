package token2022

import (
	"crypto/ed25519"

	"github.com/code-payments/token22-sdk/pkg/solana"
)

// Ledger is the narrow read surface this package needs from a Solana node.
// solana.Client satisfies it; tests substitute fakes.
type Ledger interface {
	// GetMinimumBalanceForRentExemption returns the minimum lamport
	// balance for an account of the given size to persist indefinitely.
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)

	// GetAccountInfo returns the account data at the given address.
	// Returns solana.ErrNoAccountInfo if the account doesn't exist.
	GetAccountInfo(account ed25519.PublicKey, commitment solana.Commitment) (solana.AccountInfo, error)
}
