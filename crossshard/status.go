package crossshard

// Status is the lifecycle state of a cross-shard transaction:
//
//	Pending -> InProgress -> Prepared -> Finalized
//	                      -> Failed
//
// Prepared means funds are locked on the source shard and staged on the
// destination shard, awaiting finalize; it is not terminal.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusPending
	StatusInProgress
	StatusPrepared
	StatusFinalized
	StatusFailed
)

func (st Status) String() string {
	switch st {
	case StatusPending:
		return "PENDING"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusPrepared:
		return "PREPARED"
	case StatusFinalized:
		return "FINALIZED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether the transaction can no longer move.
func (st Status) IsTerminal() bool {
	return st == StatusFinalized || st == StatusFailed
}
