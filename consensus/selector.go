package consensus

import (
	"math/rand"
	"sync"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/localtime"
	"github.com/fahertym/intercooperative-network/reputation"
	"github.com/fahertym/intercooperative-network/util"
)

var NoEligibleProposerError = util.NewError("no eligible proposer")

// ProposerSelector draws the next block proposer with probability
// proportional to reputation share, roulette-wheel style. The eligible
// set is walked in sorted address order, so a fixed random source gives
// reproducible picks.
type ProposerSelector struct {
	sync.Mutex
	rnd *rand.Rand
}

// NewProposerSelector makes a selector over the given random source; a
// nil source is seeded from the current time.
func NewProposerSelector(rnd *rand.Rand) *ProposerSelector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(localtime.Now().UnixNano())) // nolint:gosec
	}

	return &ProposerSelector{rnd: rnd}
}

func (ps *ProposerSelector) Select(ledger *reputation.Ledger) (base.Address, error) {
	eligible := ledger.Eligible()
	if len(eligible) < 1 {
		return "", NoEligibleProposerError.Call()
	}

	scores := make([]float64, len(eligible))

	var total float64
	for i := range eligible {
		score, _ := ledger.Reputation(eligible[i])
		scores[i] = score
		total += score
	}

	ps.Lock()
	point := ps.rnd.Float64() * total
	ps.Unlock()

	var cumulative float64
	for i := range eligible {
		cumulative += scores[i]
		if cumulative >= point {
			return eligible[i], nil
		}
	}

	// floating point accumulation can leave point just over the last
	// cumulative sum
	return eligible[len(eligible)-1], nil
}
