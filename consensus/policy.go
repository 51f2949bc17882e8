package consensus

import (
	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/util"
)

var (
	DefaultPolicyThresholdRatio = base.ThresholdRatio(0.66)
	DefaultPolicyProposerReward = 0.1
	DefaultPolicyVoterReward    = 0.05
	DefaultPolicyOffenseMarker  = "INVALID"
)

type Policy struct {
	thresholdRatio *util.LockedItem
	proposerReward *util.LockedItem
	voterReward    *util.LockedItem
	// rewardProposerOnFinalize defers the proposer reward until the
	// block is finalized instead of granting it at proposal time.
	rewardProposerOnFinalize *util.LockedItem
	offenseMarker            *util.LockedItem
}

func NewPolicy() *Policy {
	return &Policy{
		thresholdRatio:           util.NewLockedItem(DefaultPolicyThresholdRatio),
		proposerReward:           util.NewLockedItem(DefaultPolicyProposerReward),
		voterReward:              util.NewLockedItem(DefaultPolicyVoterReward),
		rewardProposerOnFinalize: util.NewLockedItem(false),
		offenseMarker:            util.NewLockedItem(DefaultPolicyOffenseMarker),
	}
}

func (po *Policy) ThresholdRatio() base.ThresholdRatio {
	return po.thresholdRatio.Value().(base.ThresholdRatio)
}

func (po *Policy) SetThresholdRatio(ratio base.ThresholdRatio) *Policy {
	_ = po.thresholdRatio.Set(ratio)

	return po
}

func (po *Policy) ProposerReward() float64 {
	return po.proposerReward.Value().(float64)
}

func (po *Policy) SetProposerReward(v float64) *Policy {
	_ = po.proposerReward.Set(v)

	return po
}

func (po *Policy) VoterReward() float64 {
	return po.voterReward.Value().(float64)
}

func (po *Policy) SetVoterReward(v float64) *Policy {
	_ = po.voterReward.Set(v)

	return po
}

func (po *Policy) RewardProposerOnFinalize() bool {
	return po.rewardProposerOnFinalize.Value().(bool)
}

func (po *Policy) SetRewardProposerOnFinalize(v bool) *Policy {
	_ = po.rewardProposerOnFinalize.Set(v)

	return po
}

func (po *Policy) OffenseMarker() string {
	return po.offenseMarker.Value().(string)
}

func (po *Policy) SetOffenseMarker(v string) *Policy {
	_ = po.offenseMarker.Set(v)

	return po
}
