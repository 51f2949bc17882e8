package base

import (
	"strings"

	"github.com/fahertym/intercooperative-network/util"
)

var InvalidCurrencyError = util.NewError("invalid currency")

// CurrencyID names one of the cooperative currencies.
type CurrencyID string

const (
	CurrencyBasicNeeds    CurrencyID = "BasicNeeds"
	CurrencyEducation     CurrencyID = "Education"
	CurrencyEnvironmental CurrencyID = "Environmental"
	CurrencyCommunity     CurrencyID = "Community"
	CurrencyVolunteer     CurrencyID = "Volunteer"
	CurrencyStorage       CurrencyID = "Storage"
	CurrencyProcessing    CurrencyID = "Processing"
	CurrencyEnergy        CurrencyID = "Energy"
	CurrencyLuxury        CurrencyID = "Luxury"
	CurrencyService       CurrencyID = "Service"
)

func (ci CurrencyID) String() string {
	return string(ci)
}

func (ci CurrencyID) Bytes() []byte {
	return []byte(ci)
}

func (ci CurrencyID) IsValid() error {
	if len(strings.TrimSpace(string(ci))) < 1 {
		return InvalidCurrencyError.Errorf("empty currency id")
	}

	return nil
}
