package localtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testTime struct {
	suite.Suite
}

func (t *testTime) TestRFC3339RoundTrip() {
	now := Normalize(time.Now())

	parsed, err := ParseRFC3339(RFC3339(now))
	t.NoError(err)
	t.True(now.Equal(parsed))
}

func (t *testTime) TestNormalizeUTC() {
	loc := time.FixedZone("KST", 9*60*60)

	local := time.Date(2024, 3, 1, 9, 30, 0, 123456789, loc)
	n := Normalize(local)

	t.Equal(time.UTC, n.Location())
	t.True(local.Equal(n))
}

func (t *testTime) TestNormalizeStripsMonotonic() {
	now := time.Now()
	n := Normalize(now)

	// a normalized time renders without the monotonic clock suffix
	t.NotContains(n.String(), " m=")
}

func TestTime(t *testing.T) {
	suite.Run(t, new(testTime))
}
