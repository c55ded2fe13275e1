// Package confirm waits for submitted transactions to reach a commitment
// level by polling signature statuses, so callers sequencing dependent
// on-ledger operations don't resort to fixed sleeps.
package confirm

import (
	"context"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/token22-sdk/pkg/retry"
	"github.com/code-payments/token22-sdk/pkg/retry/backoff"
	"github.com/code-payments/token22-sdk/pkg/solana"
)

var (
	// ErrNotConfirmed indicates the signature did not reach the requested
	// commitment within the polling budget. The transaction may still
	// land; callers should check the signature before resubmitting.
	ErrNotConfirmed = errors.New("transaction not confirmed")
)

type Poller struct {
	log    *logrus.Entry
	client solana.Client

	pollRate    time.Duration
	maxAttempts uint
}

func NewPoller(client solana.Client, opts ...Option) *Poller {
	p := &Poller{
		log:    logrus.StandardLogger().WithField("type", "solana/confirm/poller"),
		client: client,

		pollRate: solana.PollRate,
		// Roughly one blockhash validity window at the default rate.
		maxAttempts: 150,
	}

	for _, o := range opts {
		o(p)
	}

	return p
}

type Option func(*Poller)

func WithPollRate(rate time.Duration) Option {
	return func(p *Poller) {
		p.pollRate = rate
	}
}

func WithMaxAttempts(attempts uint) Option {
	return func(p *Poller) {
		p.maxAttempts = attempts
	}
}

// SubmitAndWait submits the signed transaction and blocks until the
// signature reaches the requested commitment, the polling budget runs out,
// or ctx is done.
func (p *Poller) SubmitAndWait(ctx context.Context, txn solana.Transaction, commitment solana.Commitment) (solana.Signature, error) {
	sig, err := p.client.SubmitTransaction(txn, solana.CommitmentProcessed)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to submit transaction")
	}

	return sig, p.Wait(ctx, sig, commitment)
}

// Wait polls the signature status until the requested commitment is
// reached. A transaction that landed with an error fails immediately; a
// signature the node hasn't seen yet is retried.
func (p *Poller) Wait(ctx context.Context, sig solana.Signature, commitment solana.Commitment) error {
	log := p.log.WithField("signature", base58.Encode(sig[:]))

	_, err := retry.Retry(
		func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			status, err := p.client.GetSignatureStatus(sig, commitment)
			if err != nil {
				if errors.Is(err, solana.ErrSignatureNotFound) {
					return solana.ErrSignatureNotFound
				}
				return err
			}

			if status.ErrorResult != nil {
				return errors.Wrap(status.ErrorResult, "transaction failed")
			}

			switch commitment {
			case solana.CommitmentProcessed:
				return nil
			case solana.CommitmentConfirmed:
				if status.Confirmed() {
					return nil
				}
			case solana.CommitmentFinalized:
				if status.Finalized() {
					return nil
				}
			}

			return ErrNotConfirmed
		},
		retry.Limit(p.maxAttempts),
		retry.RetriableErrors(solana.ErrSignatureNotFound, ErrNotConfirmed),
		retry.Backoff(backoff.Constant(p.pollRate), p.pollRate),
	)
	if err != nil {
		log.WithError(err).Warn("transaction confirmation failed")
		return err
	}

	return nil
}
