package launch

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type testNodeDesign struct {
	suite.Suite
}

func (t *testNodeDesign) TestDefaultDesignIsValid() {
	design := DefaultDesign()
	t.NoError(design.IsValid())
}

func (t *testNodeDesign) TestRoundTrip() {
	design := DefaultDesign()
	design.Address = "n3"
	design.Members = []string{"n0", "n1", "n3"}
	design.Balances = []BalanceDesign{
		{Address: "n0", Currency: "BasicNeeds", Amount: 1000},
	}

	b, err := design.Marshal()
	t.NoError(err)

	loaded, err := LoadDesignFromBytes(b)
	t.NoError(err)
	t.Equal(design, loaded)
}

func (t *testNodeDesign) TestLoadYAML() {
	y := `
address: n0
shards:
  count: 4
  nodes-per-shard: 5
consensus:
  threshold-ratio: 0.7
reputation:
  decay-period: 12h
coordinator:
  prepare-ttl: 30s
  expire-action: finalize
members:
  - n0
  - n1
balances:
  - address: n0
    currency: Education
    amount: 250
`
	design, err := LoadDesignFromBytes([]byte(y))
	t.NoError(err)

	t.Equal("n0", design.Address)
	t.Equal(uint64(4), design.Shards.Count)
	t.Equal(5, design.Shards.NodesPerShard)
	t.Equal(0.7, design.Consensus.ThresholdRatio)
	t.Equal("12h", design.Reputation.DecayPeriod)
	t.Equal("30s", design.Coordinator.PrepareTTL)
	t.Equal("finalize", design.Coordinator.ExpireAction)
	t.Equal([]string{"n0", "n1"}, design.Members)
	t.Equal(float64(250), design.Balances[0].Amount)
}

func (t *testNodeDesign) TestEmptyAddress() {
	design := DefaultDesign()
	design.Address = ""

	err := design.IsValid()
	t.True(InvalidDesignError.Is(err))
}

func (t *testNodeDesign) TestZeroShards() {
	design := DefaultDesign()
	design.Shards.Count = 0

	err := design.IsValid()
	t.True(InvalidDesignError.Is(err))
}

func (t *testNodeDesign) TestBadDuration() {
	design := DefaultDesign()
	design.Coordinator.PrepareTTL = "one minute"

	err := design.IsValid()
	t.True(InvalidDesignError.Is(err))
	t.Contains(err.Error(), "one minute")
}

func (t *testNodeDesign) TestUnknownExpireAction() {
	design := DefaultDesign()
	design.Coordinator.ExpireAction = "retry"

	err := design.IsValid()
	t.True(InvalidDesignError.Is(err))
}

func (t *testNodeDesign) TestBrokenYAML() {
	_, err := LoadDesignFromBytes([]byte("address: [unclosed"))
	t.True(InvalidDesignError.Is(err))
}

func TestNodeDesign(t *testing.T) {
	suite.Run(t, new(testNodeDesign))
}
