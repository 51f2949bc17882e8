package base

import (
	"sort"
	"strings"

	"github.com/fahertym/intercooperative-network/util"
)

var InvalidAddressError = util.NewError("invalid address")

// Address identifies a member or an account in the network.
type Address string

func (ad Address) String() string {
	return string(ad)
}

func (ad Address) Bytes() []byte {
	return []byte(ad)
}

func (ad Address) IsValid() error {
	if len(strings.TrimSpace(string(ad))) < 1 {
		return InvalidAddressError.Errorf("empty address")
	}

	return nil
}

func (ad Address) Equal(b Address) bool {
	return ad == b
}

func SortAddresses(as []Address) {
	sort.Slice(as, func(i, j int) bool {
		return strings.Compare(as[i].String(), as[j].String()) < 0
	})
}
