package valuehash

import (
	"bytes"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

const sha256Size int = 32

var emptySHA256 [sha256Size]byte

type SHA256 struct {
	b [sha256Size]byte
}

func NewSHA256(b []byte) SHA256 {
	return SHA256{b: sha3.Sum256(b)}
}

// ZeroSHA256 is the previous hash of the genesis block.
func ZeroSHA256() SHA256 {
	return SHA256{}
}

func (s256 SHA256) String() string {
	return hex.EncodeToString(s256.Bytes())
}

func (s256 SHA256) Size() int {
	return sha256Size
}

func (s256 SHA256) Bytes() []byte {
	return s256.b[:]
}

func (s256 SHA256) Equal(h Hash) bool {
	return bytes.Equal(s256.Bytes(), h.Bytes())
}

func (s256 SHA256) IsEmpty() bool {
	return s256.b == emptySHA256
}

func (s256 SHA256) MarshalText() ([]byte, error) {
	return []byte(s256.String()), nil
}

func (s256 *SHA256) UnmarshalText(b []byte) error {
	d, err := hex.DecodeString(string(b))
	if err != nil {
		return err
	}

	if len(d) != sha256Size {
		return EmptyHashError.Errorf("invalid sha256 size: %d", len(d))
	}

	copy(s256.b[:], d)

	return nil
}
