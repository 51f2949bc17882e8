package reputation

import (
	"time"

	"github.com/fahertym/intercooperative-network/util"
)

var (
	DefaultPolicyMinReputationThreshold = 0.5
	DefaultPolicyMaxReputation          = 10.0
	DefaultPolicyInitialReputation      = 1.0
	DefaultPolicyDecayPeriod            = time.Hour * 24
	DefaultPolicyDecayFactor            = 0.95
	DefaultPolicyRehabilitationRate     = 0.1
)

type Policy struct {
	minReputationThreshold *util.LockedItem
	maxReputation          *util.LockedItem
	initialReputation      *util.LockedItem
	decayPeriod            *util.LockedItem
	decayFactor            *util.LockedItem
	rehabilitationRate     *util.LockedItem
	// weightedChallenge switches ChallengeSlashing from a head-count
	// majority to a reputation-weighted majority.
	weightedChallenge *util.LockedItem
}

func NewPolicy() *Policy {
	return &Policy{
		minReputationThreshold: util.NewLockedItem(DefaultPolicyMinReputationThreshold),
		maxReputation:          util.NewLockedItem(DefaultPolicyMaxReputation),
		initialReputation:      util.NewLockedItem(DefaultPolicyInitialReputation),
		decayPeriod:            util.NewLockedItem(DefaultPolicyDecayPeriod),
		decayFactor:            util.NewLockedItem(DefaultPolicyDecayFactor),
		rehabilitationRate:     util.NewLockedItem(DefaultPolicyRehabilitationRate),
		weightedChallenge:      util.NewLockedItem(false),
	}
}

func (po *Policy) MinReputationThreshold() float64 {
	return po.minReputationThreshold.Value().(float64)
}

func (po *Policy) SetMinReputationThreshold(v float64) *Policy {
	_ = po.minReputationThreshold.Set(v)

	return po
}

func (po *Policy) MaxReputation() float64 {
	return po.maxReputation.Value().(float64)
}

func (po *Policy) SetMaxReputation(v float64) *Policy {
	_ = po.maxReputation.Set(v)

	return po
}

func (po *Policy) InitialReputation() float64 {
	return po.initialReputation.Value().(float64)
}

func (po *Policy) SetInitialReputation(v float64) *Policy {
	_ = po.initialReputation.Set(v)

	return po
}

func (po *Policy) DecayPeriod() time.Duration {
	return po.decayPeriod.Value().(time.Duration)
}

func (po *Policy) SetDecayPeriod(v time.Duration) *Policy {
	_ = po.decayPeriod.Set(v)

	return po
}

func (po *Policy) DecayFactor() float64 {
	return po.decayFactor.Value().(float64)
}

func (po *Policy) SetDecayFactor(v float64) *Policy {
	_ = po.decayFactor.Set(v)

	return po
}

func (po *Policy) RehabilitationRate() float64 {
	return po.rehabilitationRate.Value().(float64)
}

func (po *Policy) SetRehabilitationRate(v float64) *Policy {
	_ = po.rehabilitationRate.Set(v)

	return po
}

func (po *Policy) WeightedChallenge() bool {
	return po.weightedChallenge.Value().(bool)
}

func (po *Policy) SetWeightedChallenge(v bool) *Policy {
	_ = po.weightedChallenge.Set(v)

	return po
}
