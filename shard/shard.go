package shard

import (
	"sync"

	"github.com/fahertym/intercooperative-network/base"
)

// balances maps account address to per-currency amounts.
type balances map[base.Address]map[base.CurrencyID]float64

func (bl balances) get(address base.Address, currency base.CurrencyID) float64 {
	if cs, found := bl[address]; found {
		return cs[currency]
	}

	return 0
}

func (bl balances) add(address base.Address, currency base.CurrencyID, amount float64) {
	cs, found := bl[address]
	if !found {
		cs = map[base.CurrencyID]float64{}
		bl[address] = cs
	}

	cs[currency] += amount
}

func (bl balances) set(address base.Address, currency base.CurrencyID, amount float64) {
	cs, found := bl[address]
	if !found {
		cs = map[base.CurrencyID]float64{}
		bl[address] = cs
	}

	cs[currency] = amount
}

func (bl balances) total(currency base.CurrencyID) float64 {
	var total float64
	for _, cs := range bl {
		total += cs[currency]
	}

	return total
}

// Shard is one independently lockable balance partition. The spendable
// map holds funds free to move; locked holds source-side funds
// earmarked by in-flight cross-shard transfers; prepared holds
// destination-side staged credits, which do not count as supply until
// committed.
type Shard struct {
	sync.RWMutex
	id        base.ShardID
	nodes     []base.Address
	spendable balances
	locked    balances
	prepared  balances
}

func newShard(id base.ShardID) *Shard {
	return &Shard{
		id:        id,
		spendable: balances{},
		locked:    balances{},
		prepared:  balances{},
	}
}

func (sh *Shard) ID() base.ShardID {
	return sh.id
}

func (sh *Shard) Nodes() []base.Address {
	sh.RLock()
	defer sh.RUnlock()

	ns := make([]base.Address, len(sh.nodes))
	copy(ns, sh.nodes)

	return ns
}
