package base

import (
	"encoding/binary"
	"fmt"
)

// ShardID identifies one balance partition.
type ShardID uint64

func (si ShardID) Uint64() uint64 {
	return uint64(si)
}

func (si ShardID) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(si))

	return b
}

func (si ShardID) String() string {
	return fmt.Sprintf("%d", si)
}
