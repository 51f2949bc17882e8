package base

import (
	"github.com/fahertym/intercooperative-network/util"
)

var InvalidThresholdError = util.NewError("invalid threshold")

// ThresholdRatio is the weighted-favor fraction required to finalize a
// block; 0.66 means two thirds of the recorded vote weight.
type ThresholdRatio float64

func (tr ThresholdRatio) Float64() float64 {
	return float64(tr)
}

func (tr ThresholdRatio) IsValid() error {
	if tr <= 0 {
		return InvalidThresholdError.Errorf("ratio under 0: %v", tr)
	} else if tr > 1 {
		return InvalidThresholdError.Errorf("ratio over 1: %v", tr)
	}

	return nil
}

func (tr ThresholdRatio) String() string {
	b, _ := util.JSONMarshal(struct {
		Ratio float64 `json:"ratio"`
	}{Ratio: float64(tr)})

	return string(b)
}
