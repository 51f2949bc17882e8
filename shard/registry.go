package shard

import (
	"encoding/binary"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/logging"
	"github.com/fahertym/intercooperative-network/util"
	"github.com/fahertym/intercooperative-network/valuehash"
)

var (
	ShardNotFoundError       = util.NewError("shard not found")
	ShardFullError           = util.NewError("shard is full")
	InsufficientBalanceError = util.NewError("insufficient balance")
	InsufficientLockedError  = util.NewError("insufficient locked funds")
	NoPreparedFundsError     = util.NewError("no prepared funds")
)

// Registry owns the shards and the address partition. Every shard has
// its own lock; operations touching two shards always take the lower
// shard id first.
type Registry struct {
	sync.RWMutex
	*logging.Logging
	shards        map[base.ShardID]*Shard
	shardCount    uint64
	nodesPerShard int
	pinned        map[base.Address]base.ShardID
}

func NewRegistry(shardCount uint64, nodesPerShard int) *Registry {
	if shardCount < 1 {
		shardCount = 1
	}

	shards := make(map[base.ShardID]*Shard, shardCount)
	for i := uint64(0); i < shardCount; i++ {
		shards[base.ShardID(i)] = newShard(base.ShardID(i))
	}

	return &Registry{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "shard-registry")
		}),
		shards:        shards,
		shardCount:    shardCount,
		nodesPerShard: nodesPerShard,
		pinned:        map[base.Address]base.ShardID{},
	}
}

func (rg *Registry) ShardCount() uint64 {
	return rg.shardCount
}

func (rg *Registry) Shard(id base.ShardID) (*Shard, bool) {
	sh, found := rg.shards[id]

	return sh, found
}

// ShardFor resolves the shard of an address: an explicit pin wins,
// otherwise the first 8 bytes of the address hash modulo the shard
// count. The assignment is stable for a given address.
func (rg *Registry) ShardFor(address base.Address) base.ShardID {
	rg.RLock()
	if id, found := rg.pinned[address]; found {
		rg.RUnlock()
		return id
	}
	rg.RUnlock()

	h := valuehash.NewSHA256(address.Bytes())
	n := binary.BigEndian.Uint64(h.Bytes()[:8])

	return base.ShardID(n % rg.shardCount)
}

// PinAddress fixes the shard assignment of an address.
func (rg *Registry) PinAddress(address base.Address, id base.ShardID) error {
	if _, found := rg.shards[id]; !found {
		return ShardNotFoundError.Errorf("shard=%d", id)
	}

	rg.Lock()
	rg.pinned[address] = id
	rg.Unlock()

	return nil
}

// AssignNode adds a member node to a shard, refusing beyond the
// configured capacity.
func (rg *Registry) AssignNode(node base.Address, id base.ShardID) error {
	sh, found := rg.shards[id]
	if !found {
		return ShardNotFoundError.Errorf("shard=%d", id)
	}

	sh.Lock()
	defer sh.Unlock()

	if rg.nodesPerShard > 0 && len(sh.nodes) >= rg.nodesPerShard {
		return ShardFullError.Errorf("shard=%d capacity=%d", id, rg.nodesPerShard)
	}

	sh.nodes = append(sh.nodes, node)

	return nil
}

// InitializeBalance sets the spendable balance of an address on its own
// shard.
func (rg *Registry) InitializeBalance(address base.Address, currency base.CurrencyID, amount float64) error {
	sh, found := rg.shards[rg.ShardFor(address)]
	if !found {
		return ShardNotFoundError.Errorf("address=%q", address)
	}

	sh.Lock()
	sh.spendable.set(address, currency, amount)
	sh.Unlock()

	return nil
}

// Balance returns the spendable balance only; locked and prepared funds
// are not spendable.
func (rg *Registry) Balance(address base.Address, currency base.CurrencyID) float64 {
	sh, found := rg.shards[rg.ShardFor(address)]
	if !found {
		return 0
	}

	sh.RLock()
	defer sh.RUnlock()

	return sh.spendable.get(address, currency)
}

// LockedBalance returns the funds earmarked by in-flight transfers.
func (rg *Registry) LockedBalance(address base.Address, currency base.CurrencyID) float64 {
	sh, found := rg.shards[rg.ShardFor(address)]
	if !found {
		return 0
	}

	sh.RLock()
	defer sh.RUnlock()

	return sh.locked.get(address, currency)
}

// LockFunds moves amount from spendable to locked on the given shard.
// The balance check and the move happen under one shard lock.
func (rg *Registry) LockFunds(address base.Address, currency base.CurrencyID, amount float64, id base.ShardID) error {
	sh, found := rg.shards[id]
	if !found {
		return ShardNotFoundError.Errorf("shard=%d", id)
	}

	sh.Lock()
	defer sh.Unlock()

	available := sh.spendable.get(address, currency)
	if available < amount {
		return InsufficientBalanceError.Errorf(
			"address=%q currency=%q available=%v amount=%v", address, currency, available, amount)
	}

	sh.spendable.add(address, currency, -amount)
	sh.locked.add(address, currency, amount)

	rg.Log().Debug().
		Str("address", address.String()).
		Str("currency", currency.String()).
		Float64("amount", amount).
		Uint64("shard", id.Uint64()).
		Msg("funds locked")

	return nil
}

// UnlockFunds is the compensating move of LockFunds, locked back to
// spendable.
func (rg *Registry) UnlockFunds(address base.Address, currency base.CurrencyID, amount float64, id base.ShardID) error {
	sh, found := rg.shards[id]
	if !found {
		return ShardNotFoundError.Errorf("shard=%d", id)
	}

	sh.Lock()
	defer sh.Unlock()

	locked := sh.locked.get(address, currency)
	if locked < amount {
		return InsufficientLockedError.Errorf(
			"address=%q currency=%q locked=%v amount=%v", address, currency, locked, amount)
	}

	sh.locked.add(address, currency, -amount)
	sh.spendable.add(address, currency, amount)

	rg.Log().Debug().
		Str("address", address.String()).
		Str("currency", currency.String()).
		Float64("amount", amount).
		Uint64("shard", id.Uint64()).
		Msg("funds unlocked")

	return nil
}

// CreatePrepareBlock stages the transfer amount for the recipient on
// the destination shard; the recipient spendable balance is untouched
// until commit.
func (rg *Registry) CreatePrepareBlock(tf base.Transfer, id base.ShardID) error {
	sh, found := rg.shards[id]
	if !found {
		return ShardNotFoundError.Errorf("shard=%d", id)
	}

	sh.Lock()
	sh.prepared.add(tf.To, tf.Currency, tf.Amount)
	sh.Unlock()

	rg.Log().Debug().
		Str("to", tf.To.String()).
		Str("currency", tf.Currency.String()).
		Float64("amount", tf.Amount).
		Uint64("shard", id.Uint64()).
		Msg("prepare block staged")

	return nil
}

// DropPrepareBlock is the compensating unstage of CreatePrepareBlock.
func (rg *Registry) DropPrepareBlock(tf base.Transfer, id base.ShardID) error {
	sh, found := rg.shards[id]
	if !found {
		return ShardNotFoundError.Errorf("shard=%d", id)
	}

	sh.Lock()
	defer sh.Unlock()

	staged := sh.prepared.get(tf.To, tf.Currency)
	if staged < tf.Amount {
		return NoPreparedFundsError.Errorf(
			"to=%q currency=%q staged=%v amount=%v", tf.To, tf.Currency, staged, tf.Amount)
	}

	sh.prepared.add(tf.To, tf.Currency, -tf.Amount)

	return nil
}

// CommitTransaction permanently settles a prepared transfer: the source
// shard burns the locked amount and the destination shard turns the
// staged amount into spendable balance. Both shard locks are held for
// the whole commit, lower shard id first, so the total supply of the
// currency never shows a partial state.
func (rg *Registry) CommitTransaction(tf base.Transfer, from, to base.ShardID) error {
	fromShard, found := rg.shards[from]
	if !found {
		return ShardNotFoundError.Errorf("from shard=%d", from)
	}
	toShard, found := rg.shards[to]
	if !found {
		return ShardNotFoundError.Errorf("to shard=%d", to)
	}

	unlock := rg.lockPair(fromShard, toShard)
	defer unlock()

	locked := fromShard.locked.get(tf.From, tf.Currency)
	if locked < tf.Amount {
		return InsufficientLockedError.Errorf(
			"from=%q currency=%q locked=%v amount=%v", tf.From, tf.Currency, locked, tf.Amount)
	}

	staged := toShard.prepared.get(tf.To, tf.Currency)
	if staged < tf.Amount {
		return NoPreparedFundsError.Errorf(
			"to=%q currency=%q staged=%v amount=%v", tf.To, tf.Currency, staged, tf.Amount)
	}

	fromShard.locked.add(tf.From, tf.Currency, -tf.Amount)
	toShard.prepared.add(tf.To, tf.Currency, -tf.Amount)
	toShard.spendable.add(tf.To, tf.Currency, tf.Amount)

	rg.Log().Info().
		Str("from", tf.From.String()).
		Str("to", tf.To.String()).
		Str("currency", tf.Currency.String()).
		Float64("amount", tf.Amount).
		Uint64("from_shard", from.Uint64()).
		Uint64("to_shard", to.Uint64()).
		Msg("cross-shard transfer committed")

	return nil
}

// TotalSupply sums spendable and locked funds of a currency across all
// shards under a consistent snapshot; prepared funds are claims on
// already-locked value and are not counted.
func (rg *Registry) TotalSupply(currency base.CurrencyID) float64 {
	for i := uint64(0); i < rg.shardCount; i++ {
		rg.shards[base.ShardID(i)].RLock()
	}
	defer func() {
		for i := uint64(0); i < rg.shardCount; i++ {
			rg.shards[base.ShardID(i)].RUnlock()
		}
	}()

	var total float64
	for i := uint64(0); i < rg.shardCount; i++ {
		sh := rg.shards[base.ShardID(i)]
		total += sh.spendable.total(currency)
		total += sh.locked.total(currency)
	}

	return total
}

// lockPair takes both shard locks in ascending shard id order and
// returns the paired unlock.
func (rg *Registry) lockPair(a, b *Shard) func() {
	if a.id == b.id {
		a.Lock()
		return a.Unlock
	}

	first, second := a, b
	if second.id < first.id {
		first, second = second, first
	}

	first.Lock()
	second.Lock()

	return func() {
		second.Unlock()
		first.Unlock()
	}
}
