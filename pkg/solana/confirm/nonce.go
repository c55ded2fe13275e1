package confirm

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/token22-sdk/pkg/solana"
	"github.com/code-payments/token22-sdk/pkg/solana/system"
)

// MakeNoncedTransaction makes a transaction that's backed by a durable nonce,
// so it can be signed ahead of submission without the blockhash expiring.
// The nonce advance is always the first instruction. The returned transaction
// is not signed.
func MakeNoncedTransaction(payer, nonce, authority ed25519.PublicKey, nonceValue solana.Blockhash, instructions ...solana.Instruction) (solana.Transaction, error) {
	if len(instructions) == 0 {
		return solana.Transaction{}, errors.New("no instructions provided")
	}

	instructions = append([]solana.Instruction{system.AdvanceNonce(nonce, authority)}, instructions...)

	txn := solana.NewTransaction(payer, instructions...)
	txn.SetBlockhash(nonceValue)

	return txn, nil
}

// GetNonceValue fetches a nonce account and returns its current value.
func GetNonceValue(client solana.Client, nonce ed25519.PublicKey, commitment solana.Commitment) (solana.Blockhash, error) {
	info, err := client.GetAccountInfo(nonce, commitment)
	if err != nil {
		return solana.Blockhash{}, errors.Wrap(err, "failed to get nonce account")
	}

	return system.GetNonceValueFromAccount(info)
}

// CreateNonceAccount returns the instructions to create and initialize a
// nonce account with the payer as its authority. The nonce keypair must
// co-sign the transaction carrying them.
func CreateNonceAccount(client solana.Client, payer, nonce ed25519.PublicKey) ([]solana.Instruction, error) {
	rent, err := client.GetMinimumBalanceForRentExemption(system.NonceAccountSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rent amount")
	}

	return []solana.Instruction{
		system.CreateAccount(
			payer,
			nonce,
			system.SystemAccount,
			rent,
			system.NonceAccountSize,
		),
		system.InitializeNonce(
			nonce,
			payer,
		),
	}, nil
}
