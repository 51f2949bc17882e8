package crossshard

import (
	"time"

	"github.com/fahertym/intercooperative-network/base"
)

// Transaction is one in-flight cross-shard transfer and its protocol
// state.
type Transaction struct {
	ID          string        `json:"id"`
	Transfer    base.Transfer `json:"transfer"`
	FromShard   base.ShardID  `json:"from_shard"`
	ToShard     base.ShardID  `json:"to_shard"`
	Status      Status        `json:"status"`
	InitiatedAt time.Time     `json:"initiated_at"`
	PreparedAt  time.Time     `json:"prepared_at,omitempty"`
	FailReason  string        `json:"fail_reason,omitempty"`
}
