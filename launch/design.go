package launch

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/util"
)

var InvalidDesignError = util.NewError("invalid node design")

// NodeDesign is the yaml description of one node: identity, shard
// layout, policy overrides and the initial genesis state.
type NodeDesign struct {
	Address             string            `yaml:"address"`
	NTPServer           string            `yaml:"ntp-server,omitempty"`
	Shards              ShardDesign       `yaml:"shards"`
	Consensus           ConsensusDesign   `yaml:"consensus"`
	Reputation          ReputationDesign  `yaml:"reputation"`
	Coordinator         CoordinatorDesign `yaml:"coordinator"`
	MaintenanceInterval string            `yaml:"maintenance-interval,omitempty"`
	Members             []string          `yaml:"members,omitempty"`
	Balances            []BalanceDesign   `yaml:"balances,omitempty"`
	Logging             LoggingDesign     `yaml:"logging,omitempty"`
}

type ShardDesign struct {
	Count         uint64 `yaml:"count"`
	NodesPerShard int    `yaml:"nodes-per-shard"`
}

type ConsensusDesign struct {
	ThresholdRatio           float64 `yaml:"threshold-ratio,omitempty"`
	ProposerReward           float64 `yaml:"proposer-reward,omitempty"`
	VoterReward              float64 `yaml:"voter-reward,omitempty"`
	RewardProposerOnFinalize bool    `yaml:"reward-proposer-on-finalize,omitempty"`
	OffenseMarker            string  `yaml:"offense-marker,omitempty"`
}

type ReputationDesign struct {
	MinThreshold       float64 `yaml:"min-threshold,omitempty"`
	MaxReputation      float64 `yaml:"max-reputation,omitempty"`
	InitialReputation  float64 `yaml:"initial-reputation,omitempty"`
	DecayPeriod        string  `yaml:"decay-period,omitempty"`
	DecayFactor        float64 `yaml:"decay-factor,omitempty"`
	RehabilitationRate float64 `yaml:"rehabilitation-rate,omitempty"`
	WeightedChallenge  bool    `yaml:"weighted-challenge,omitempty"`
}

type CoordinatorDesign struct {
	PrepareTTL    string `yaml:"prepare-ttl,omitempty"`
	ExpireAction  string `yaml:"expire-action,omitempty"`
	SweepInterval string `yaml:"sweep-interval,omitempty"`
}

type BalanceDesign struct {
	Address  string  `yaml:"address"`
	Currency string  `yaml:"currency"`
	Amount   float64 `yaml:"amount"`
}

type LoggingDesign struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

func LoadDesign(path string) (NodeDesign, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return NodeDesign{}, err
	}

	return LoadDesignFromBytes(b)
}

func LoadDesignFromBytes(b []byte) (NodeDesign, error) {
	var design NodeDesign
	if err := yaml.Unmarshal(b, &design); err != nil {
		return NodeDesign{}, InvalidDesignError.Wrap(err)
	}

	if err := design.IsValid(); err != nil {
		return NodeDesign{}, err
	}

	return design, nil
}

// DefaultDesign is the design written by `icnd init`.
func DefaultDesign() NodeDesign {
	return NodeDesign{
		Address: "n0",
		Shards:  ShardDesign{Count: 2, NodesPerShard: 10},
		Consensus: ConsensusDesign{
			ThresholdRatio: 0.66,
			ProposerReward: 0.1,
			VoterReward:    0.05,
			OffenseMarker:  "INVALID",
		},
		Reputation: ReputationDesign{
			MinThreshold:       0.5,
			MaxReputation:      10.0,
			InitialReputation:  1.0,
			DecayPeriod:        "24h",
			DecayFactor:        0.95,
			RehabilitationRate: 0.1,
		},
		Coordinator: CoordinatorDesign{
			PrepareTTL:    "1m",
			ExpireAction:  "rollback",
			SweepInterval: "10s",
		},
		MaintenanceInterval: "10s",
		Members:             []string{"n0"},
		Logging:             LoggingDesign{Level: "debug", Format: "terminal"},
	}
}

func (nd NodeDesign) IsValid() error {
	if err := base.Address(nd.Address).IsValid(); err != nil {
		return InvalidDesignError.Wrap(err)
	}

	if nd.Shards.Count < 1 {
		return InvalidDesignError.Errorf("shard count must be over 0")
	}

	for _, d := range []string{
		nd.Reputation.DecayPeriod,
		nd.Coordinator.PrepareTTL,
		nd.Coordinator.SweepInterval,
		nd.MaintenanceInterval,
	} {
		if len(d) < 1 {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return InvalidDesignError.Errorf("bad duration %q: %v", d, err)
		}
	}

	switch nd.Coordinator.ExpireAction {
	case "", "rollback", "finalize":
	default:
		return InvalidDesignError.Errorf("unknown expire-action %q", nd.Coordinator.ExpireAction)
	}

	return nil
}

func (nd NodeDesign) Marshal() ([]byte, error) {
	return yaml.Marshal(nd)
}

func durationOr(s string, def time.Duration) time.Duration {
	if len(s) < 1 {
		return def
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}

	return d
}
