package launch

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/consensus"
	"github.com/fahertym/intercooperative-network/crossshard"
	"github.com/fahertym/intercooperative-network/localtime"
	"github.com/fahertym/intercooperative-network/logging"
	"github.com/fahertym/intercooperative-network/reputation"
	"github.com/fahertym/intercooperative-network/shard"
	"github.com/fahertym/intercooperative-network/util"
)

var (
	defaultMaintenanceInterval = time.Second * 10
	defaultSweepInterval       = time.Second * 10
	defaultNTPCheckInterval    = time.Minute
)

// Node wires the consensus engine, shard registry and cross-shard
// coordinator of one process, plus the periodic maintenance daemons.
type Node struct {
	*logging.Logging
	design      NodeDesign
	ledger      *reputation.Ledger
	engine      *consensus.Engine
	registry    *shard.Registry
	coordinator *crossshard.Coordinator
	daemons     []util.Daemon
}

func NewNode(design NodeDesign) (*Node, error) {
	if err := design.IsValid(); err != nil {
		return nil, err
	}

	ledger := reputation.NewLedger(reputationPolicy(design.Reputation))
	for _, m := range design.Members {
		ledger.AddMember(base.Address(m))
	}

	engine := consensus.NewEngine(
		ledger,
		consensus.NewProposerSelector(nil),
		consensusPolicy(design.Consensus),
	)

	registry := shard.NewRegistry(design.Shards.Count, design.Shards.NodesPerShard)
	for _, b := range design.Balances {
		if err := registry.InitializeBalance(
			base.Address(b.Address), base.CurrencyID(b.Currency), b.Amount,
		); err != nil {
			return nil, err
		}
	}

	coordinator := crossshard.NewCoordinator(registry, crossshard.NewTransferVerifier(registry)).
		SetPrepareTTL(durationOr(design.Coordinator.PrepareTTL, crossshard.DefaultPrepareTTL))
	if design.Coordinator.ExpireAction == string(crossshard.ExpireFinalize) {
		coordinator.SetExpireAction(crossshard.ExpireFinalize)
	}

	no := &Node{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "node").Str("address", design.Address)
		}),
		design:      design,
		ledger:      ledger,
		engine:      engine,
		registry:    registry,
		coordinator: coordinator,
	}

	return no, no.prepareDaemons()
}

func (no *Node) prepareDaemons() error {
	maintenance, err := localtime.NewCallbackTimer(
		"maintenance",
		func() (bool, error) {
			no.engine.MaintainBlockchain()
			no.engine.FinalizeBlocks()

			return true, nil
		},
		durationOr(no.design.MaintenanceInterval, defaultMaintenanceInterval),
	)
	if err != nil {
		return err
	}

	sweeper, err := no.coordinator.NewSweeper(
		durationOr(no.design.Coordinator.SweepInterval, defaultSweepInterval),
	)
	if err != nil {
		return err
	}

	no.daemons = []util.Daemon{maintenance, sweeper}

	return nil
}

func (no *Node) SetLogger(l logging.Logger) logging.Logger {
	_ = no.engine.SetLogger(l)
	_ = no.registry.SetLogger(l)
	_ = no.coordinator.SetLogger(l)

	return no.Logging.SetLogger(l)
}

func (no *Node) Design() NodeDesign {
	return no.design
}

func (no *Node) Engine() *consensus.Engine {
	return no.engine
}

func (no *Node) Registry() *shard.Registry {
	return no.registry
}

func (no *Node) Coordinator() *crossshard.Coordinator {
	return no.coordinator
}

// Start syncs time when a ntp server is designed and starts the
// periodic daemons.
func (no *Node) Start() error {
	if len(no.design.NTPServer) > 0 {
		syncer, err := localtime.NewTimeSyncer(no.design.NTPServer, defaultNTPCheckInterval)
		if err != nil {
			return err
		}

		if err := syncer.Start(); err != nil {
			return err
		}

		localtime.SetTimeSyncer(syncer)
	}

	for _, dm := range no.daemons {
		if err := dm.Start(); err != nil {
			return err
		}
	}

	no.Log().Info().Msg("node started")

	return nil
}

func (no *Node) Stop() error {
	for _, dm := range no.daemons {
		if dm.IsStopped() {
			continue
		}

		if err := dm.Stop(); err != nil {
			return err
		}
	}

	no.Log().Info().Msg("node stopped")

	return nil
}

func reputationPolicy(design ReputationDesign) *reputation.Policy {
	po := reputation.NewPolicy()

	if design.MinThreshold > 0 {
		po.SetMinReputationThreshold(design.MinThreshold)
	}
	if design.MaxReputation > 0 {
		po.SetMaxReputation(design.MaxReputation)
	}
	if design.InitialReputation > 0 {
		po.SetInitialReputation(design.InitialReputation)
	}
	if len(design.DecayPeriod) > 0 {
		po.SetDecayPeriod(durationOr(design.DecayPeriod, reputation.DefaultPolicyDecayPeriod))
	}
	if design.DecayFactor > 0 {
		po.SetDecayFactor(design.DecayFactor)
	}
	if design.RehabilitationRate > 0 {
		po.SetRehabilitationRate(design.RehabilitationRate)
	}
	po.SetWeightedChallenge(design.WeightedChallenge)

	return po
}

func consensusPolicy(design ConsensusDesign) *consensus.Policy {
	po := consensus.NewPolicy()

	if design.ThresholdRatio > 0 {
		po.SetThresholdRatio(base.ThresholdRatio(design.ThresholdRatio))
	}
	if design.ProposerReward > 0 {
		po.SetProposerReward(design.ProposerReward)
	}
	if design.VoterReward > 0 {
		po.SetVoterReward(design.VoterReward)
	}
	po.SetRewardProposerOnFinalize(design.RewardProposerOnFinalize)
	if len(design.OffenseMarker) > 0 {
		po.SetOffenseMarker(design.OffenseMarker)
	}

	return po
}
