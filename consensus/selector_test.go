package consensus

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/xerrors"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/reputation"
)

type testProposerSelector struct {
	suite.Suite
}

func (t *testProposerSelector) newLedger(scores map[base.Address]float64) *reputation.Ledger {
	lg := reputation.NewLedger(reputation.NewPolicy())
	for m, score := range scores {
		lg.AddMember(m)
		t.NoError(lg.UpdateReputation(m, score-reputation.DefaultPolicyInitialReputation))
	}

	return lg
}

func (t *testProposerSelector) TestNoEligible() {
	lg := t.newLedger(map[base.Address]float64{"alice": 0.1, "bob": 0.2})

	ps := NewProposerSelector(rand.New(rand.NewSource(1)))

	_, err := ps.Select(lg)
	t.Error(err)
	t.True(xerrors.Is(err, NoEligibleProposerError))
}

func (t *testProposerSelector) TestSingleEligible() {
	lg := t.newLedger(map[base.Address]float64{"alice": 3.0, "bob": 0.2})

	ps := NewProposerSelector(rand.New(rand.NewSource(1)))

	for i := 0; i < 10; i++ {
		proposer, err := ps.Select(lg)
		t.NoError(err)
		t.Equal(base.Address("alice"), proposer)
	}
}

func (t *testProposerSelector) TestDeterministicWithFixedSeed() {
	scores := map[base.Address]float64{"alice": 3.0, "bob": 1.0, "charlie": 2.0}

	a := NewProposerSelector(rand.New(rand.NewSource(33)))
	b := NewProposerSelector(rand.New(rand.NewSource(33)))

	for i := 0; i < 100; i++ {
		pa, err := a.Select(t.newLedger(scores))
		t.NoError(err)
		pb, err := b.Select(t.newLedger(scores))
		t.NoError(err)

		t.Equal(pa, pb, "selection %d diverged", i)
	}
}

func (t *testProposerSelector) TestWeightedDistribution() {
	lg := t.newLedger(map[base.Address]float64{"alice": 3.0, "bob": 1.0})

	ps := NewProposerSelector(rand.New(rand.NewSource(7)))

	const trials = 20000

	counts := map[base.Address]int{}
	for i := 0; i < trials; i++ {
		proposer, err := ps.Select(lg)
		t.NoError(err)
		counts[proposer]++
	}

	// alice holds 3/4 of the eligible reputation
	ratio := float64(counts["alice"]) / float64(trials)
	t.InDelta(0.75, ratio, 0.03)
	t.True(counts["bob"] > 0)
}

func TestProposerSelector(t *testing.T) {
	suite.Run(t, new(testProposerSelector))
}
