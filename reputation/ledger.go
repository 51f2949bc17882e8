package reputation

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/localtime"
	"github.com/fahertym/intercooperative-network/logging"
	"github.com/fahertym/intercooperative-network/util"
)

var MemberNotFoundError = util.NewError("member not found")

// Ledger owns the reputation scores of all registered members. Scores
// are always clamped into [0, MaxReputation]; members are never removed,
// a zero score is not removal.
type Ledger struct {
	sync.RWMutex
	*logging.Logging
	policy    *Policy
	scores    map[base.Address]float64
	lastDecay time.Time
	nowFunc   func() time.Time
}

func NewLedger(policy *Policy) *Ledger {
	if policy == nil {
		policy = NewPolicy()
	}

	return &Ledger{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "reputation-ledger")
		}),
		policy:    policy,
		scores:    map[base.Address]float64{},
		lastDecay: localtime.Now(),
		nowFunc:   localtime.Now,
	}
}

// SetNowFunc replaces the clock used for decay timing.
func (lg *Ledger) SetNowFunc(fn func() time.Time) *Ledger {
	lg.Lock()
	defer lg.Unlock()

	lg.nowFunc = fn

	return lg
}

func (lg *Ledger) Policy() *Policy {
	return lg.policy
}

// AddMember registers a new member with the initial score. Re-adding an
// already known member does not touch its live score.
func (lg *Ledger) AddMember(member base.Address) {
	lg.Lock()
	defer lg.Unlock()

	if _, found := lg.scores[member]; found {
		return
	}

	lg.scores[member] = lg.clamp(lg.policy.InitialReputation())

	lg.Log().Debug().Str("member", member.String()).Msg("member added")
}

// UpdateReputation adds delta to the member score, clamped into
// [0, MaxReputation].
func (lg *Ledger) UpdateReputation(member base.Address, delta float64) error {
	lg.Lock()
	defer lg.Unlock()

	old, found := lg.scores[member]
	if !found {
		return MemberNotFoundError.Errorf("member=%q", member)
	}

	lg.scores[member] = lg.clamp(old + delta)

	return nil
}

func (lg *Ledger) Reputation(member base.Address) (float64, bool) {
	lg.RLock()
	defer lg.RUnlock()

	score, found := lg.scores[member]

	return score, found
}

func (lg *Ledger) IsEligible(member base.Address) bool {
	lg.RLock()
	defer lg.RUnlock()

	return lg.scores[member] >= lg.policy.MinReputationThreshold()
}

// EligibleReputation returns the member score together with its
// eligibility under one read lock, so a concurrent update cannot leave
// the pair inconsistent.
func (lg *Ledger) EligibleReputation(member base.Address) (float64, bool) {
	lg.RLock()
	defer lg.RUnlock()

	score, found := lg.scores[member]
	if !found {
		return 0, false
	}

	return score, score >= lg.policy.MinReputationThreshold()
}

// Members returns all registered members sorted by address.
func (lg *Ledger) Members() []base.Address {
	lg.RLock()
	defer lg.RUnlock()

	return lg.members()
}

// Eligible returns the members at or over the minimum threshold, sorted
// by address so that any decision fed by this list is reproducible.
func (lg *Ledger) Eligible() []base.Address {
	lg.RLock()
	defer lg.RUnlock()

	min := lg.policy.MinReputationThreshold()

	var el []base.Address
	for _, m := range lg.members() {
		if lg.scores[m] >= min {
			el = append(el, m)
		}
	}

	return el
}

// Decay multiplies every score by DecayFactor once DecayPeriod has
// elapsed since the last decay; earlier calls are no-ops.
func (lg *Ledger) Decay() bool {
	lg.Lock()
	defer lg.Unlock()

	now := lg.nowFunc()
	if now.Sub(lg.lastDecay) < lg.policy.DecayPeriod() {
		return false
	}

	factor := lg.policy.DecayFactor()
	for m := range lg.scores {
		lg.scores[m] = lg.clamp(lg.scores[m] * factor)
	}
	lg.lastDecay = now

	lg.Log().Debug().Float64("factor", factor).Msg("reputations decayed")

	return true
}

// Rehabilitate nudges every member under the minimum threshold upward by
// RehabilitationRate, capped at the threshold itself.
func (lg *Ledger) Rehabilitate() {
	lg.Lock()
	defer lg.Unlock()

	min := lg.policy.MinReputationThreshold()
	rate := lg.policy.RehabilitationRate()

	for m, score := range lg.scores {
		if score >= min {
			continue
		}

		score += rate
		if score > min {
			score = min
		}

		lg.scores[m] = score
	}
}

// Slash applies the offense severity as a negative reputation delta.
func (lg *Ledger) Slash(member base.Address, offense Offense) error {
	if err := lg.UpdateReputation(member, -offense.Severity()); err != nil {
		return err
	}

	lg.Log().Info().
		Str("member", member.String()).
		Str("offense", offense.String()).
		Float64("severity", offense.Severity()).
		Msg("member slashed")

	return nil
}

// ChallengeSlashing reverses a slashing when enough members back the
// challenge; success restores MaxReputation/2. The quorum is a plain
// head-count majority unless the policy asks for a weighted one.
func (lg *Ledger) ChallengeSlashing(member base.Address, challengeVotes float64) (bool, error) {
	lg.Lock()
	defer lg.Unlock()

	if _, found := lg.scores[member]; !found {
		return false, MemberNotFoundError.Errorf("member=%q", member)
	}

	var quorum float64
	if lg.policy.WeightedChallenge() {
		var total float64
		for _, score := range lg.scores {
			total += score
		}
		quorum = total / 2
	} else {
		quorum = float64(len(lg.scores)) / 2
	}

	if challengeVotes <= quorum {
		lg.Log().Debug().
			Str("member", member.String()).
			Float64("votes", challengeVotes).
			Float64("quorum", quorum).
			Msg("slashing challenge failed")

		return false, nil
	}

	restore := lg.policy.MaxReputation() / 2
	lg.scores[member] = lg.clamp(lg.scores[member] + restore)

	lg.Log().Info().
		Str("member", member.String()).
		Float64("restored", restore).
		Msg("slashing challenge succeeded")

	return true, nil
}

// TotalReputation is the sum of all scores.
func (lg *Ledger) TotalReputation() float64 {
	lg.RLock()
	defer lg.RUnlock()

	var total float64
	for _, score := range lg.scores {
		total += score
	}

	return total
}

func (lg *Ledger) members() []base.Address {
	ms := make([]base.Address, 0, len(lg.scores))
	for m := range lg.scores {
		ms = append(ms, m)
	}
	base.SortAddresses(ms)

	return ms
}

func (lg *Ledger) clamp(score float64) float64 {
	if score < 0 {
		return 0
	}

	if max := lg.policy.MaxReputation(); score > max {
		return max
	}

	return score
}
