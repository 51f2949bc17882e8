package key

import (
	"github.com/btcsuite/btcutil/base58"
	stellarHash "github.com/stellar/go/hash"
	stellarKeypair "github.com/stellar/go/keypair"

	"github.com/fahertym/intercooperative-network/util"
)

var (
	SignatureVerificationFailedError = util.NewError("signature verification failed")
	InvalidKeyError                  = util.NewError("invalid key")
)

type Signature []byte

func (s Signature) String() string {
	return base58.Encode(s)
}

func (s Signature) Equal(ns Signature) bool {
	if len(s) != len(ns) {
		return false
	}

	for i, b := range s {
		if b != ns[i] {
			return false
		}
	}

	return true
}

type Publickey struct {
	kp stellarKeypair.KP
}

func NewPublickey(address string) (Publickey, error) {
	kp, err := stellarKeypair.Parse(address)
	if err != nil {
		return Publickey{}, InvalidKeyError.Wrap(err)
	}

	return Publickey{kp: kp}, nil
}

func (pb Publickey) String() string {
	return pb.kp.Address()
}

func (pb Publickey) Verify(input []byte, sig Signature) error {
	if err := pb.kp.Verify(input, []byte(sig)); err != nil {
		return SignatureVerificationFailedError.Wrap(err)
	}

	return nil
}

type Privatekey struct {
	kp *stellarKeypair.Full
}

// NewPrivatekey generates a new random keypair.
func NewPrivatekey() (Privatekey, error) {
	kp, err := stellarKeypair.Random()
	if err != nil {
		return Privatekey{}, err
	}

	return Privatekey{kp: kp}, nil
}

// NewPrivatekeyFromSeed derives a keypair from a raw seed.
func NewPrivatekeyFromSeed(b []byte) (Privatekey, error) {
	kp, err := stellarKeypair.FromRawSeed(stellarHash.Hash(b))
	if err != nil {
		return Privatekey{}, err
	}

	return Privatekey{kp: kp}, nil
}

func (pv Privatekey) String() string {
	return pv.kp.Seed()
}

func (pv Privatekey) Publickey() Publickey {
	return Publickey{kp: pv.kp}
}

func (pv Privatekey) Sign(input []byte) (Signature, error) {
	sig, err := pv.kp.Sign(input)
	if err != nil {
		return nil, err
	}

	return Signature(sig), nil
}
