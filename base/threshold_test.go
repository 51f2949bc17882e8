package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdRatio(t *testing.T) {
	cases := []struct {
		name  string
		ratio float64
		err   string
	}{
		{name: "zero", ratio: 0, err: "under 0"},
		{name: "negative", ratio: -0.5, err: "under 0"},
		{name: "over 1", ratio: 1.5, err: "over 1"},
		{name: "valid #0", ratio: 0.66},
		{name: "valid #1", ratio: 1},
		{name: "valid #2", ratio: 0.001},
	}

	for i, c := range cases {
		i := i
		c := c
		t.Run(c.name, func(*testing.T) {
			err := ThresholdRatio(c.ratio).IsValid()
			if len(c.err) > 0 {
				assert.Error(t, err, "%d: %v", i, c.name)
				assert.Contains(t, err.Error(), c.err, "%d: %v", i, c.name)
				return
			}

			assert.NoError(t, err, "%d: %v", i, c.name)
		})
	}
}
