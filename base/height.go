package base

import (
	"encoding/binary"
	"fmt"

	"github.com/fahertym/intercooperative-network/util"
)

var (
	NilHeight     = Height(-1)
	GenesisHeight = Height(0)
)

var InvalidHeightError = util.NewError("invalid height")

// Height stands for the height of a Block in the chain.
type Height int64

// IsValid checks Height.
func (ht Height) IsValid() error {
	if ht < GenesisHeight {
		return InvalidHeightError.Errorf("height must not be under %d; height=%d", GenesisHeight, ht)
	}

	return nil
}

func (ht Height) Int64() int64 {
	return int64(ht)
}

func (ht Height) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(ht))

	return b
}

func (ht Height) String() string {
	return fmt.Sprintf("%d", ht)
}
