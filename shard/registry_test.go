package shard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/fahertym/intercooperative-network/base"
)

type testRegistry struct {
	suite.Suite
}

func (t *testRegistry) TestShardForStable() {
	rg := NewRegistry(4, 0)

	a := base.Address("cooperative-worker-7")
	id := rg.ShardFor(a)
	t.True(id.Uint64() < 4)

	for i := 0; i < 10; i++ {
		t.Equal(id, rg.ShardFor(a))
	}
}

func (t *testRegistry) TestShardForSpread() {
	rg := NewRegistry(4, 0)

	seen := map[base.ShardID]struct{}{}
	for _, a := range []base.Address{
		"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi",
		"ivan", "judy", "mallory", "nick", "olivia", "peggy", "rupert", "sybil",
	} {
		seen[rg.ShardFor(a)] = struct{}{}
	}

	t.True(len(seen) > 1)
}

func (t *testRegistry) TestPinAddress() {
	rg := NewRegistry(4, 0)

	a := base.Address("alice")
	natural := rg.ShardFor(a)
	pin := base.ShardID((natural.Uint64() + 1) % 4)

	t.NoError(rg.PinAddress(a, pin))
	t.Equal(pin, rg.ShardFor(a))

	err := rg.PinAddress(a, base.ShardID(99))
	t.True(ShardNotFoundError.Is(err))
}

func (t *testRegistry) TestAssignNodeCapacity() {
	rg := NewRegistry(2, 2)

	t.NoError(rg.AssignNode("n0", 0))
	t.NoError(rg.AssignNode("n1", 0))

	err := rg.AssignNode("n2", 0)
	t.True(ShardFullError.Is(err))

	t.NoError(rg.AssignNode("n2", 1))

	err = rg.AssignNode("n3", 5)
	t.True(ShardNotFoundError.Is(err))

	sh, found := rg.Shard(0)
	t.True(found)
	t.Equal([]base.Address{"n0", "n1"}, sh.Nodes())
}

func (t *testRegistry) TestLockFunds() {
	rg := NewRegistry(2, 0)

	a := base.Address("alice")
	id := rg.ShardFor(a)
	t.NoError(rg.InitializeBalance(a, base.CurrencyBasicNeeds, 100))

	t.NoError(rg.LockFunds(a, base.CurrencyBasicNeeds, 60, id))
	t.Equal(float64(40), rg.Balance(a, base.CurrencyBasicNeeds))
	t.Equal(float64(60), rg.LockedBalance(a, base.CurrencyBasicNeeds))

	err := rg.LockFunds(a, base.CurrencyBasicNeeds, 50, id)
	t.True(InsufficientBalanceError.Is(err))
	t.Equal(float64(40), rg.Balance(a, base.CurrencyBasicNeeds))
}

func (t *testRegistry) TestUnlockFunds() {
	rg := NewRegistry(2, 0)

	a := base.Address("alice")
	id := rg.ShardFor(a)
	t.NoError(rg.InitializeBalance(a, base.CurrencyEducation, 100))
	t.NoError(rg.LockFunds(a, base.CurrencyEducation, 60, id))

	t.NoError(rg.UnlockFunds(a, base.CurrencyEducation, 60, id))
	t.Equal(float64(100), rg.Balance(a, base.CurrencyEducation))
	t.Equal(float64(0), rg.LockedBalance(a, base.CurrencyEducation))

	err := rg.UnlockFunds(a, base.CurrencyEducation, 1, id)
	t.True(InsufficientLockedError.Is(err))
}

func (t *testRegistry) TestPrepareAndDrop() {
	rg := NewRegistry(2, 0)

	tf := base.Transfer{
		From:     "alice",
		To:       "bob",
		Amount:   30,
		Currency: base.CurrencyBasicNeeds,
	}

	toShard := rg.ShardFor(tf.To)
	t.NoError(rg.CreatePrepareBlock(tf, toShard))

	// staged funds are not spendable
	t.Equal(float64(0), rg.Balance(tf.To, tf.Currency))

	t.NoError(rg.DropPrepareBlock(tf, toShard))

	err := rg.DropPrepareBlock(tf, toShard)
	t.True(NoPreparedFundsError.Is(err))
}

func (t *testRegistry) TestCommitTransaction() {
	rg := NewRegistry(2, 0)

	tf := base.Transfer{
		From:     "alice",
		To:       "bob",
		Amount:   30,
		Currency: base.CurrencyBasicNeeds,
	}

	t.NoError(rg.PinAddress(tf.From, 0))
	t.NoError(rg.PinAddress(tf.To, 1))
	t.NoError(rg.InitializeBalance(tf.From, tf.Currency, 100))

	t.NoError(rg.LockFunds(tf.From, tf.Currency, tf.Amount, 0))
	t.NoError(rg.CreatePrepareBlock(tf, 1))
	t.NoError(rg.CommitTransaction(tf, 0, 1))

	t.Equal(float64(70), rg.Balance(tf.From, tf.Currency))
	t.Equal(float64(0), rg.LockedBalance(tf.From, tf.Currency))
	t.Equal(float64(30), rg.Balance(tf.To, tf.Currency))
}

func (t *testRegistry) TestCommitWithoutLockedFunds() {
	rg := NewRegistry(2, 0)

	tf := base.Transfer{
		From:     "alice",
		To:       "bob",
		Amount:   30,
		Currency: base.CurrencyBasicNeeds,
	}

	t.NoError(rg.PinAddress(tf.From, 0))
	t.NoError(rg.PinAddress(tf.To, 1))
	t.NoError(rg.CreatePrepareBlock(tf, 1))

	err := rg.CommitTransaction(tf, 0, 1)
	t.True(InsufficientLockedError.Is(err))
}

func (t *testRegistry) TestCommitWithoutPrepareBlock() {
	rg := NewRegistry(2, 0)

	tf := base.Transfer{
		From:     "alice",
		To:       "bob",
		Amount:   30,
		Currency: base.CurrencyBasicNeeds,
	}

	t.NoError(rg.PinAddress(tf.From, 0))
	t.NoError(rg.PinAddress(tf.To, 1))
	t.NoError(rg.InitializeBalance(tf.From, tf.Currency, 100))
	t.NoError(rg.LockFunds(tf.From, tf.Currency, tf.Amount, 0))

	err := rg.CommitTransaction(tf, 0, 1)
	t.True(NoPreparedFundsError.Is(err))

	// the lock stays untouched for a later retry or rollback
	t.Equal(float64(30), rg.LockedBalance(tf.From, tf.Currency))
}

func (t *testRegistry) TestTotalSupply() {
	rg := NewRegistry(2, 0)

	tf := base.Transfer{
		From:     "alice",
		To:       "bob",
		Amount:   30,
		Currency: base.CurrencyBasicNeeds,
	}

	t.NoError(rg.PinAddress(tf.From, 0))
	t.NoError(rg.PinAddress(tf.To, 1))
	t.NoError(rg.InitializeBalance(tf.From, tf.Currency, 100))
	t.Equal(float64(100), rg.TotalSupply(tf.Currency))

	t.NoError(rg.LockFunds(tf.From, tf.Currency, tf.Amount, 0))
	t.Equal(float64(100), rg.TotalSupply(tf.Currency))

	// prepared funds are a claim on the locked value, not new supply
	t.NoError(rg.CreatePrepareBlock(tf, 1))
	t.Equal(float64(100), rg.TotalSupply(tf.Currency))

	t.NoError(rg.CommitTransaction(tf, 0, 1))
	t.Equal(float64(100), rg.TotalSupply(tf.Currency))

	// other currencies are counted separately
	t.Equal(float64(0), rg.TotalSupply(base.CurrencyEducation))
}

func (t *testRegistry) TestConcurrentLockUnlock() {
	rg := NewRegistry(2, 0)

	a := base.Address("alice")
	id := rg.ShardFor(a)
	t.NoError(rg.InitializeBalance(a, base.CurrencyBasicNeeds, 1000))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				if err := rg.LockFunds(a, base.CurrencyBasicNeeds, 1, id); err != nil {
					continue
				}
				_ = rg.UnlockFunds(a, base.CurrencyBasicNeeds, 1, id)
			}
		}()
	}
	wg.Wait()

	t.Equal(float64(1000), rg.Balance(a, base.CurrencyBasicNeeds))
	t.Equal(float64(0), rg.LockedBalance(a, base.CurrencyBasicNeeds))
}

func TestRegistry(t *testing.T) {
	suite.Run(t, new(testRegistry))
}
