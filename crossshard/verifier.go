package crossshard

import (
	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/shard"
	"github.com/fahertym/intercooperative-network/util"
)

var VerificationFailedError = util.NewError("transaction verification failed")

// Verifier is the pre-processing check run before any funds move.
type Verifier interface {
	Verify(base.Transfer) error
}

// NilVerifier accepts everything; it stands in where verification is
// supplied elsewhere.
type NilVerifier struct{}

func (NilVerifier) Verify(base.Transfer) error { return nil }

// TransferVerifier checks the transfer shape, its signature and that
// the sender holds enough spendable balance. The balance probe here is
// advisory only; the authoritative check is the atomic one inside
// LockFunds.
type TransferVerifier struct {
	registry *shard.Registry
}

func NewTransferVerifier(registry *shard.Registry) TransferVerifier {
	return TransferVerifier{registry: registry}
}

func (vf TransferVerifier) Verify(tf base.Transfer) error {
	if err := tf.IsValid(); err != nil {
		return VerificationFailedError.Wrap(err)
	}

	if err := tf.VerifySignature(); err != nil {
		return VerificationFailedError.Wrap(err)
	}

	if available := vf.registry.Balance(tf.From, tf.Currency); available < tf.Amount {
		return VerificationFailedError.Errorf(
			"from=%q currency=%q available=%v amount=%v", tf.From, tf.Currency, available, tf.Amount)
	}

	return nil
}
