package base

import (
	"fmt"

	"github.com/fahertym/intercooperative-network/key"
	"github.com/fahertym/intercooperative-network/util"
)

var InvalidTransferError = util.NewError("invalid transfer")

// Transfer moves value between two accounts; when the accounts live on
// different shards it is driven through the cross-shard protocol.
type Transfer struct {
	From      Address       `json:"from"`
	To        Address       `json:"to"`
	Amount    float64       `json:"amount"`
	Currency  CurrencyID    `json:"currency"`
	Signer    string        `json:"signer,omitempty"`
	Signature key.Signature `json:"signature,omitempty"`
}

func NewTransfer(from, to Address, amount float64, currency CurrencyID) Transfer {
	return Transfer{From: from, To: to, Amount: amount, Currency: currency}
}

func (tf Transfer) IsValid() error {
	if err := tf.From.IsValid(); err != nil {
		return InvalidTransferError.Wrap(err)
	}
	if err := tf.To.IsValid(); err != nil {
		return InvalidTransferError.Wrap(err)
	}
	if err := tf.Currency.IsValid(); err != nil {
		return InvalidTransferError.Wrap(err)
	}
	if tf.Amount <= 0 {
		return InvalidTransferError.Errorf("amount must be over 0: %v", tf.Amount)
	}

	return nil
}

// Bytes is the byte form used for signing and verification.
func (tf Transfer) Bytes() []byte {
	return []byte(fmt.Sprintf("%s-%s-%v-%s", tf.From, tf.To, tf.Amount, tf.Currency))
}

// Sign attaches the signer public address and signature.
func (tf *Transfer) Sign(pv key.Privatekey) error {
	sig, err := pv.Sign(tf.Bytes())
	if err != nil {
		return err
	}

	tf.Signer = pv.Publickey().String()
	tf.Signature = sig

	return nil
}

// VerifySignature checks the attached signature against the attached
// signer key; a transfer without a signer is not checked here.
func (tf Transfer) VerifySignature() error {
	if len(tf.Signer) < 1 {
		return key.SignatureVerificationFailedError.Errorf("no signer")
	}

	pb, err := key.NewPublickey(tf.Signer)
	if err != nil {
		return err
	}

	return pb.Verify(tf.Bytes(), tf.Signature)
}
