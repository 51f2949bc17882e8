package consensus

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/localtime"
	"github.com/fahertym/intercooperative-network/logging"
	"github.com/fahertym/intercooperative-network/reputation"
	"github.com/fahertym/intercooperative-network/util"
)

var VoterNotEligibleError = util.NewError("voter not eligible")

// Vote is one recorded ballot for a pending block. The weight is the
// voter reputation at the instant the vote was cast; later reputation
// changes never alter it.
type Vote struct {
	Voter   base.Address `json:"voter"`
	InFavor bool         `json:"in_favor"`
	Weight  float64      `json:"weight"`
	VotedAt time.Time    `json:"voted_at"`
}

// VoteRecords accumulates the votes of one pending block height. Votes
// are an ordered list; a voter submitting twice is counted twice.
type VoteRecords struct {
	height base.Height
	votes  []Vote
}

func NewVoteRecords(height base.Height) *VoteRecords {
	return &VoteRecords{height: height}
}

func (vrs *VoteRecords) Votes() []Vote {
	vs := make([]Vote, len(vrs.votes))
	copy(vs, vrs.votes)

	return vs
}

func (vrs *VoteRecords) add(vt Vote) {
	vrs.votes = append(vrs.votes, vt)
}

// favorRatio is weighted favor over total weight; a record with no
// weight reports 0, never a division panic.
func (vrs *VoteRecords) favorRatio() float64 {
	var total, favor float64
	for i := range vrs.votes {
		total += vrs.votes[i].Weight
		if vrs.votes[i].InFavor {
			favor += vrs.votes[i].Weight
		}
	}

	if total <= 0 {
		return 0
	}

	return favor / total
}

// Ballotbox collects weighted votes per pending block height and
// decides when a height clears the threshold.
type Ballotbox struct {
	sync.RWMutex
	*logging.Logging
	thresholdFunc func() base.ThresholdRatio
	records       map[base.Height]*VoteRecords
}

func NewBallotbox(thresholdFunc func() base.ThresholdRatio) *Ballotbox {
	return &Ballotbox{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "ballotbox")
		}),
		thresholdFunc: thresholdFunc,
		records:       map[base.Height]*VoteRecords{},
	}
}

// Vote records one ballot; the weight snapshot is taken from the ledger
// here and now, in the same read that decides eligibility.
func (bb *Ballotbox) Vote(height base.Height, voter base.Address, inFavor bool, ledger *reputation.Ledger) error {
	weight, eligible := ledger.EligibleReputation(voter)
	if !eligible {
		return VoterNotEligibleError.Errorf("voter=%q", voter)
	}

	bb.Lock()
	defer bb.Unlock()

	vrs, found := bb.records[height]
	if !found {
		vrs = NewVoteRecords(height)
		bb.records[height] = vrs
	}

	vrs.add(Vote{
		Voter:   voter,
		InFavor: inFavor,
		Weight:  weight,
		VotedAt: localtime.Now(),
	})

	bb.Log().Debug().
		Int64("height", height.Int64()).
		Str("voter", voter.String()).
		Bool("in_favor", inFavor).
		Float64("weight", weight).
		Msg("vote recorded")

	return nil
}

// IsFinalizable reports whether the weighted favor fraction of the
// height reached the threshold; a height without votes is not.
func (bb *Ballotbox) IsFinalizable(height base.Height) bool {
	bb.RLock()
	defer bb.RUnlock()

	vrs, found := bb.records[height]
	if !found || len(vrs.votes) < 1 {
		return false
	}

	return vrs.favorRatio() >= bb.thresholdFunc().Float64()
}

// Finalize rewards every voter of the height and drops its records.
func (bb *Ballotbox) Finalize(height base.Height, ledger *reputation.Ledger, voterReward float64) {
	bb.Lock()
	defer bb.Unlock()

	vrs, found := bb.records[height]
	if !found {
		return
	}

	for i := range vrs.votes {
		_ = ledger.UpdateReputation(vrs.votes[i].Voter, voterReward)
	}

	delete(bb.records, height)

	bb.Log().Debug().
		Int64("height", height.Int64()).
		Int("votes", len(vrs.votes)).
		Msg("votes finalized")
}

// Discard drops the vote records of a height without rewarding anyone,
// for blocks removed from pending before finalization. A later block
// reusing the height starts from an empty record.
func (bb *Ballotbox) Discard(height base.Height) {
	bb.Lock()
	defer bb.Unlock()

	vrs, found := bb.records[height]
	if !found {
		return
	}

	delete(bb.records, height)

	bb.Log().Debug().
		Int64("height", height.Int64()).
		Int("votes", len(vrs.votes)).
		Msg("votes discarded")
}

// Votes returns a copy of the recorded votes of the height.
func (bb *Ballotbox) Votes(height base.Height) []Vote {
	bb.RLock()
	defer bb.RUnlock()

	vrs, found := bb.records[height]
	if !found {
		return nil
	}

	return vrs.Votes()
}

// Clean drops vote records under the given height.
func (bb *Ballotbox) Clean(under base.Height) {
	bb.Lock()
	defer bb.Unlock()

	for h := range bb.records {
		if h < under {
			delete(bb.records, h)
		}
	}
}
