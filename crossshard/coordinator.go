package crossshard

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/localtime"
	"github.com/fahertym/intercooperative-network/logging"
	"github.com/fahertym/intercooperative-network/util"
)

// Registry is the shard balance store the coordinator drives; the
// production implementation is shard.Registry.
type Registry interface {
	ShardFor(base.Address) base.ShardID
	LockFunds(base.Address, base.CurrencyID, float64, base.ShardID) error
	UnlockFunds(base.Address, base.CurrencyID, float64, base.ShardID) error
	CreatePrepareBlock(base.Transfer, base.ShardID) error
	DropPrepareBlock(base.Transfer, base.ShardID) error
	CommitTransaction(base.Transfer, base.ShardID, base.ShardID) error
}

var (
	TransactionNotFoundError = util.NewError("transaction not found")
	NotCrossShardError       = util.NewError("not a cross-shard transaction")
	InvalidStateError        = util.NewError("transaction not in required state")
	LockFailedError          = util.NewError("failed to lock funds")
	PrepareFailedError       = util.NewError("failed to create prepare block")
)

var (
	DefaultPrepareTTL    = time.Minute
	DefaultFailedLogSize = 1000
)

// ExpireAction decides what the sweeper does with a transaction stuck
// in Prepared past the TTL.
type ExpireAction string

const (
	ExpireRollback ExpireAction = "rollback"
	ExpireFinalize ExpireAction = "finalize"
)

// Coordinator drives the lock/prepare/commit protocol that moves value
// between shards. A transaction failing after funds were locked always
// has its lock compensated before the failure is reported; nothing
// stays locked behind a Failed transaction.
type Coordinator struct {
	sync.RWMutex
	*logging.Logging
	registry     Registry
	verifier     Verifier
	prepareTTL   *util.LockedItem
	expireAction *util.LockedItem
	pending      map[string]*Transaction
	processed    map[string]struct{}
	failed       map[string]*Transaction
	failedOrder  []string
	nowFunc      func() time.Time
}

func NewCoordinator(registry Registry, verifier Verifier) *Coordinator {
	if verifier == nil {
		verifier = NilVerifier{}
	}

	return &Coordinator{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "crossshard-coordinator")
		}),
		registry:     registry,
		verifier:     verifier,
		prepareTTL:   util.NewLockedItem(DefaultPrepareTTL),
		expireAction: util.NewLockedItem(ExpireRollback),
		pending:      map[string]*Transaction{},
		processed:    map[string]struct{}{},
		failed:       map[string]*Transaction{},
		nowFunc:      localtime.Now,
	}
}

func (co *Coordinator) PrepareTTL() time.Duration {
	return co.prepareTTL.Value().(time.Duration)
}

func (co *Coordinator) SetPrepareTTL(d time.Duration) *Coordinator {
	_ = co.prepareTTL.Set(d)

	return co
}

func (co *Coordinator) ExpireAction() ExpireAction {
	return co.expireAction.Value().(ExpireAction)
}

func (co *Coordinator) SetExpireAction(ac ExpireAction) *Coordinator {
	_ = co.expireAction.Set(ac)

	return co
}

// SetNowFunc replaces the clock used for prepare expiry.
func (co *Coordinator) SetNowFunc(fn func() time.Time) *Coordinator {
	co.Lock()
	defer co.Unlock()

	co.nowFunc = fn

	return co
}

// Initiate registers a new cross-shard transfer and returns its fresh
// transaction id. A transfer whose accounts resolve to the same shard
// is refused.
func (co *Coordinator) Initiate(tf base.Transfer) (string, error) {
	from := co.registry.ShardFor(tf.From)
	to := co.registry.ShardFor(tf.To)

	if from == to {
		return "", NotCrossShardError.Errorf("from=%q to=%q shard=%d", tf.From, tf.To, from)
	}

	id := util.UUID().String()

	co.Lock()
	co.pending[id] = &Transaction{
		ID:          id,
		Transfer:    tf,
		FromShard:   from,
		ToShard:     to,
		Status:      StatusPending,
		InitiatedAt: co.nowFunc(),
	}
	co.Unlock()

	co.Log().Info().
		Str("tx", id).
		Uint64("from_shard", from.Uint64()).
		Uint64("to_shard", to.Uint64()).
		Msg("cross-shard transaction initiated")

	return id, nil
}

// Process verifies the transfer and runs the lock and prepare steps.
// Verification failure is terminal with nothing to compensate. A
// prepare failure after a successful lock unlocks the source funds
// before the failure is reported.
func (co *Coordinator) Process(id string) error {
	co.Lock()
	tx, found := co.pending[id]
	if !found {
		co.Unlock()
		return TransactionNotFoundError.Errorf("tx=%q", id)
	}

	if tx.Status != StatusPending {
		st := tx.Status
		co.Unlock()
		return InvalidStateError.Errorf("tx=%q status=%q expected=%q", id, st, StatusPending)
	}

	tx.Status = StatusInProgress
	tf, from, to := tx.Transfer, tx.FromShard, tx.ToShard
	co.Unlock()

	if err := co.verifier.Verify(tf); err != nil {
		co.fail(id, err)

		return VerificationFailedError.Wrap(err)
	}

	if err := co.registry.LockFunds(tf.From, tf.Currency, tf.Amount, from); err != nil {
		co.fail(id, err)

		return LockFailedError.Wrap(err)
	}

	if err := co.registry.CreatePrepareBlock(tf, to); err != nil {
		// compensate the lock before reporting failure
		if uerr := co.registry.UnlockFunds(tf.From, tf.Currency, tf.Amount, from); uerr != nil {
			co.Log().Error().Err(uerr).Str("tx", id).Msg("failed to unlock after prepare failure")
		}

		co.fail(id, err)

		return PrepareFailedError.Wrap(err)
	}

	co.Lock()
	tx.Status = StatusPrepared
	tx.PreparedAt = co.nowFunc()
	co.Unlock()

	co.Log().Info().Str("tx", id).Msg("cross-shard transaction prepared")

	return nil
}

// Finalize commits a prepared transaction on both shards and moves its
// id into the processed set.
func (co *Coordinator) Finalize(id string) error {
	co.Lock()
	tx, found := co.pending[id]
	if !found {
		co.Unlock()
		return TransactionNotFoundError.Errorf("tx=%q", id)
	}

	if tx.Status != StatusPrepared {
		st := tx.Status
		co.Unlock()
		return InvalidStateError.Errorf("tx=%q status=%q expected=%q", id, st, StatusPrepared)
	}

	tf, from, to := tx.Transfer, tx.FromShard, tx.ToShard
	co.Unlock()

	if err := co.registry.CommitTransaction(tf, from, to); err != nil {
		return err
	}

	co.Lock()
	tx.Status = StatusFinalized
	delete(co.pending, id)
	co.processed[id] = struct{}{}
	co.Unlock()

	co.Log().Info().Str("tx", id).Msg("cross-shard transaction finalized")

	return nil
}

// Status reports the transaction state: first the pending map, then the
// processed set, then the failed log.
func (co *Coordinator) Status(id string) (Status, error) {
	co.RLock()
	defer co.RUnlock()

	if tx, found := co.pending[id]; found {
		return tx.Status, nil
	}

	if _, found := co.processed[id]; found {
		return StatusFinalized, nil
	}

	if _, found := co.failed[id]; found {
		return StatusFailed, nil
	}

	return StatusUnknown, TransactionNotFoundError.Errorf("tx=%q", id)
}

// Failed returns the retained record of a failed transaction.
func (co *Coordinator) Failed(id string) (Transaction, bool) {
	co.RLock()
	defer co.RUnlock()

	tx, found := co.failed[id]
	if !found {
		return Transaction{}, false
	}

	return *tx, true
}

// Pending returns a copy of the non-terminal transactions.
func (co *Coordinator) Pending() []Transaction {
	co.RLock()
	defer co.RUnlock()

	txs := make([]Transaction, 0, len(co.pending))
	for _, tx := range co.pending {
		txs = append(txs, *tx)
	}

	return txs
}

// Sweep rolls back or force-finalizes transactions stuck in Prepared
// past the TTL, so no funds stay locked forever. It returns the ids it
// acted on.
func (co *Coordinator) Sweep() []string {
	ttl := co.PrepareTTL()
	action := co.ExpireAction()

	co.RLock()
	now := co.nowFunc()

	var expired []string
	for id, tx := range co.pending {
		if tx.Status == StatusPrepared && now.Sub(tx.PreparedAt) >= ttl {
			expired = append(expired, id)
		}
	}
	co.RUnlock()

	for _, id := range expired {
		switch action {
		case ExpireFinalize:
			if err := co.Finalize(id); err != nil {
				co.Log().Error().Err(err).Str("tx", id).Msg("failed to force-finalize expired transaction")
			}
		default:
			co.rollback(id)
		}
	}

	return expired
}

// NewSweeper wraps Sweep in a periodic timer daemon.
func (co *Coordinator) NewSweeper(interval time.Duration) (*localtime.CallbackTimer, error) {
	return localtime.NewCallbackTimer(
		"crossshard-sweeper",
		func() (bool, error) {
			co.Sweep()

			return true, nil
		},
		interval,
	)
}

// rollback compensates a prepared transaction: unstage the destination,
// unlock the source, mark Failed.
func (co *Coordinator) rollback(id string) {
	co.Lock()
	tx, found := co.pending[id]
	if !found || tx.Status != StatusPrepared {
		co.Unlock()
		return
	}

	tf, from, to := tx.Transfer, tx.FromShard, tx.ToShard
	co.Unlock()

	if err := co.registry.DropPrepareBlock(tf, to); err != nil {
		co.Log().Error().Err(err).Str("tx", id).Msg("failed to drop prepare block on rollback")
	}

	if err := co.registry.UnlockFunds(tf.From, tf.Currency, tf.Amount, from); err != nil {
		co.Log().Error().Err(err).Str("tx", id).Msg("failed to unlock funds on rollback")
	}

	co.fail(id, PrepareFailedError.Errorf("prepare expired after %v", co.PrepareTTL()))

	co.Log().Info().Str("tx", id).Msg("expired prepared transaction rolled back")
}

// fail moves a pending transaction into the failed log, evicting the
// oldest entries over the log size.
func (co *Coordinator) fail(id string, reason error) {
	co.Lock()
	defer co.Unlock()

	tx, found := co.pending[id]
	if !found {
		return
	}

	tx.Status = StatusFailed
	if reason != nil {
		tx.FailReason = reason.Error()
	}

	delete(co.pending, id)
	co.failed[id] = tx
	co.failedOrder = append(co.failedOrder, id)

	for len(co.failedOrder) > DefaultFailedLogSize {
		oldest := co.failedOrder[0]
		co.failedOrder = co.failedOrder[1:]
		delete(co.failed, oldest)
	}
}
