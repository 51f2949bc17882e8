package consensus

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/xerrors"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/reputation"
)

type testBallotbox struct {
	suite.Suite
	ledger *reputation.Ledger
}

func (t *testBallotbox) SetupTest() {
	t.ledger = reputation.NewLedger(reputation.NewPolicy())
}

func (t *testBallotbox) addMember(m base.Address, score float64) {
	t.ledger.AddMember(m)
	t.NoError(t.ledger.UpdateReputation(m, score-reputation.DefaultPolicyInitialReputation))
}

func (t *testBallotbox) newBallotbox(ratio base.ThresholdRatio) *Ballotbox {
	return NewBallotbox(func() base.ThresholdRatio { return ratio })
}

func (t *testBallotbox) TestVote() {
	t.addMember("alice", 2.0)

	bb := t.newBallotbox(0.66)
	t.NoError(bb.Vote(1, "alice", true, t.ledger))

	votes := bb.Votes(1)
	t.Equal(1, len(votes))
	t.Equal(base.Address("alice"), votes[0].Voter)
	t.True(votes[0].InFavor)
	t.Equal(2.0, votes[0].Weight)
	t.False(votes[0].VotedAt.IsZero())
}

func (t *testBallotbox) TestVoteIneligible() {
	t.addMember("alice", 0.2)

	bb := t.newBallotbox(0.66)

	err := bb.Vote(1, "alice", true, t.ledger)
	t.Error(err)
	t.True(xerrors.Is(err, VoterNotEligibleError))
	t.Nil(bb.Votes(1))
}

func (t *testBallotbox) TestWeightSnapshotIsolated() {
	t.addMember("alice", 2.0)

	bb := t.newBallotbox(0.66)
	t.NoError(bb.Vote(1, "alice", true, t.ledger))

	// a later reputation change must not alter the recorded weight
	t.NoError(t.ledger.UpdateReputation("alice", 5.0))

	votes := bb.Votes(1)
	t.Equal(2.0, votes[0].Weight)
}

func (t *testBallotbox) TestNoVotesIsNotFinalizable() {
	bb := t.newBallotbox(0.66)
	t.False(bb.IsFinalizable(1))
}

func (t *testBallotbox) TestThresholdBoundary() {
	// 2.0 in favor of 4.0 total weight, ratio exactly 0.5
	t.addMember("alice", 2.0)
	t.addMember("bob", 2.0)

	bb := t.newBallotbox(0.5)
	t.NoError(bb.Vote(1, "alice", true, t.ledger))
	t.NoError(bb.Vote(1, "bob", false, t.ledger))

	// exactly at the threshold finalizes
	t.True(bb.IsFinalizable(1))
}

func (t *testBallotbox) TestUnderThreshold() {
	t.addMember("alice", 2.0)
	t.addMember("bob", 2.0)

	bb := t.newBallotbox(0.51)
	t.NoError(bb.Vote(1, "alice", true, t.ledger))
	t.NoError(bb.Vote(1, "bob", false, t.ledger))

	t.False(bb.IsFinalizable(1))
}

func (t *testBallotbox) TestDuplicateVotesCount() {
	t.addMember("alice", 2.0)

	bb := t.newBallotbox(0.66)
	t.NoError(bb.Vote(1, "alice", true, t.ledger))
	t.NoError(bb.Vote(1, "alice", true, t.ledger))

	t.Equal(2, len(bb.Votes(1)))
}

func (t *testBallotbox) TestFinalizeRewardsVoters() {
	t.addMember("alice", 2.0)
	t.addMember("bob", 3.0)

	bb := t.newBallotbox(0.66)
	t.NoError(bb.Vote(1, "alice", true, t.ledger))
	t.NoError(bb.Vote(1, "bob", false, t.ledger))

	bb.Finalize(1, t.ledger, 0.05)

	alice, _ := t.ledger.Reputation("alice")
	bob, _ := t.ledger.Reputation("bob")
	t.InDelta(2.05, alice, 0.000001)
	t.InDelta(3.05, bob, 0.000001)

	// records are discarded
	t.Nil(bb.Votes(1))
	t.False(bb.IsFinalizable(1))
}

func (t *testBallotbox) TestDiscard() {
	t.addMember("alice", 2.0)

	bb := t.newBallotbox(0.66)
	t.NoError(bb.Vote(1, "alice", true, t.ledger))

	bb.Discard(1)

	// no reward was paid and the height is empty again
	alice, _ := t.ledger.Reputation("alice")
	t.Equal(2.0, alice)
	t.Nil(bb.Votes(1))
	t.False(bb.IsFinalizable(1))

	// discarding an empty height is harmless
	bb.Discard(1)
}

func (t *testBallotbox) TestClean() {
	t.addMember("alice", 2.0)

	bb := t.newBallotbox(0.66)
	t.NoError(bb.Vote(1, "alice", true, t.ledger))
	t.NoError(bb.Vote(2, "alice", true, t.ledger))
	t.NoError(bb.Vote(5, "alice", true, t.ledger))

	bb.Clean(3)

	t.Nil(bb.Votes(1))
	t.Nil(bb.Votes(2))
	t.Equal(1, len(bb.Votes(5)))
}

func TestBallotbox(t *testing.T) {
	suite.Run(t, new(testBallotbox))
}
