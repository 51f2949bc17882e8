package valuehash

import (
	"fmt"

	"github.com/fahertym/intercooperative-network/util"
)

var EmptyHashError = util.NewError("empty hash")

type Hash interface {
	fmt.Stringer
	Size() int
	Bytes() []byte
	Equal(Hash) bool
	IsEmpty() bool
}
