package consensus

import (
	"bytes"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/logging"
	"github.com/fahertym/intercooperative-network/reputation"
	"github.com/fahertym/intercooperative-network/util"
)

var BlockNotFoundError = util.NewError("block not found")

// Engine drives the Proof-of-Cooperation consensus: weighted proposer
// selection, reputation-weighted voting over pending blocks, threshold
// finalization and periodic reputation maintenance.
type Engine struct {
	sync.RWMutex
	*logging.Logging
	policy    *Policy
	ledger    *reputation.Ledger
	selector  *ProposerSelector
	ballotbox *Ballotbox
	chain     *Chain
	pending   map[base.Height]Block
}

func NewEngine(ledger *reputation.Ledger, selector *ProposerSelector, policy *Policy) *Engine {
	if policy == nil {
		policy = NewPolicy()
	}

	return &Engine{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "consensus-engine")
		}),
		policy:    policy,
		ledger:    ledger,
		selector:  selector,
		ballotbox: NewBallotbox(policy.ThresholdRatio),
		chain:     NewChain(),
		pending:   map[base.Height]Block{},
	}
}

func (en *Engine) SetLogger(l logging.Logger) logging.Logger {
	_ = en.ballotbox.SetLogger(l)
	_ = en.ledger.SetLogger(l)

	return en.Logging.SetLogger(l)
}

func (en *Engine) Policy() *Policy {
	return en.policy
}

func (en *Engine) Ledger() *reputation.Ledger {
	return en.ledger
}

// ProposeBlock selects a proposer, builds a block on the current tip
// (or on the highest pending block when one exists) and stages it as
// pending. Unless the policy defers it, the proposer reward is granted
// here, before any vote is cast.
func (en *Engine) ProposeBlock(data []byte) (Block, error) {
	proposer, err := en.selector.Select(en.ledger)
	if err != nil {
		return Block{}, err
	}

	en.Lock()
	defer en.Unlock()

	height := en.chain.Tip().Height + 1
	previous := en.chain.Tip().Hash()

	for h, bl := range en.pending {
		if h >= height {
			height = h + 1
			previous = bl.Hash()
		}
	}

	bl := NewBlock(height, data, previous, proposer)
	en.pending[height] = bl

	if !en.policy.RewardProposerOnFinalize() {
		_ = en.ledger.UpdateReputation(proposer, en.policy.ProposerReward())
	}

	en.Log().Info().
		Int64("height", height.Int64()).
		Str("proposer", proposer.String()).
		Str("hash", bl.Hash().String()).
		Msg("block proposed")

	return bl, nil
}

// VoteOnBlock records one weighted vote for a pending block. The engine
// lock is held through the record, so a concurrent drop of the block
// cannot slip between the pending check and the vote.
func (en *Engine) VoteOnBlock(height base.Height, voter base.Address, inFavor bool) error {
	en.RLock()
	defer en.RUnlock()

	if _, found := en.pending[height]; !found {
		return BlockNotFoundError.Errorf("no pending block at height=%d", height)
	}

	return en.ballotbox.Vote(height, voter, inFavor, en.ledger)
}

// FinalizeBlocks appends every pending block over the vote threshold to
// the chain, in strictly ascending height order. A ready block whose
// height is not exactly the next after the tip stays pending; blocks
// after a gap are not finalized out of order.
func (en *Engine) FinalizeBlocks() []Block {
	en.Lock()
	defer en.Unlock()

	heights := make([]base.Height, 0, len(en.pending))
	for h := range en.pending {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	var finalized []Block
	for _, h := range heights {
		if h != en.chain.Tip().Height+1 {
			break
		}

		if !en.ballotbox.IsFinalizable(h) {
			break
		}

		bl := en.pending[h]
		if err := en.chain.Append(bl); err != nil {
			en.Log().Error().Err(err).Int64("height", h.Int64()).Msg("failed to append finalizable block")
			break
		}

		en.ballotbox.Finalize(h, en.ledger, en.policy.VoterReward())

		if en.policy.RewardProposerOnFinalize() {
			_ = en.ledger.UpdateReputation(bl.Proposer, en.policy.ProposerReward())
		}

		delete(en.pending, h)
		finalized = append(finalized, bl)

		en.Log().Info().
			Int64("height", h.Int64()).
			Str("proposer", bl.Proposer.String()).
			Msg("block finalized")
	}

	return finalized
}

// CheckForSlashing scans pending block payloads for the offense marker
// and slashes the proposer with critical severity; the offending block
// is dropped from pending along with its recorded votes. The slashed
// proposers are returned.
func (en *Engine) CheckForSlashing() []base.Address {
	en.Lock()
	defer en.Unlock()

	marker := []byte(en.policy.OffenseMarker())

	var slashed []base.Address
	for h, bl := range en.pending {
		if !bytes.Contains(bl.Data, marker) {
			continue
		}

		if err := en.ledger.Slash(bl.Proposer, reputation.OffenseCritical); err != nil {
			en.Log().Error().Err(err).Str("proposer", bl.Proposer.String()).Msg("failed to slash proposer")
			continue
		}

		delete(en.pending, h)
		en.ballotbox.Discard(h)
		slashed = append(slashed, bl.Proposer)

		en.Log().Info().
			Int64("height", h.Int64()).
			Str("proposer", bl.Proposer.String()).
			Msg("pending block dropped and proposer slashed")
	}

	return slashed
}

// MaintainBlockchain is the periodic maintenance tick: reputation
// decay, rehabilitation, then the slashing scan, in that order.
func (en *Engine) MaintainBlockchain() {
	en.ledger.Decay()
	en.ledger.Rehabilitate()
	en.CheckForSlashing()
}

// Chain returns a copy of the finalized blocks.
func (en *Engine) Chain() []Block {
	en.RLock()
	defer en.RUnlock()

	return en.chain.Blocks()
}

func (en *Engine) Tip() Block {
	en.RLock()
	defer en.RUnlock()

	return en.chain.Tip()
}

// Pending returns a copy of the pending blocks.
func (en *Engine) Pending() map[base.Height]Block {
	en.RLock()
	defer en.RUnlock()

	bs := make(map[base.Height]Block, len(en.pending))
	for h, bl := range en.pending {
		bs[h] = bl
	}

	return bs
}

// Votes exposes the recorded votes of a pending height.
func (en *Engine) Votes(height base.Height) []Vote {
	return en.ballotbox.Votes(height)
}
