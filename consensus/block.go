package consensus

import (
	"time"

	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/localtime"
	"github.com/fahertym/intercooperative-network/util"
	"github.com/fahertym/intercooperative-network/valuehash"
)

var InvalidBlockError = util.NewError("invalid block")

// Block is one entry of the chain. A block stays pending from proposal
// until it gathers enough weighted votes to be finalized.
type Block struct {
	Height       base.Height      `json:"height"`
	CreatedAt    time.Time        `json:"created_at"`
	Data         []byte           `json:"data"`
	PreviousHash valuehash.SHA256 `json:"previous_hash"`
	BlockHash    valuehash.SHA256 `json:"hash"`
	Proposer     base.Address     `json:"proposer"`
}

func NewBlock(height base.Height, data []byte, previous valuehash.SHA256, proposer base.Address) Block {
	bl := Block{
		Height:       height,
		CreatedAt:    localtime.Normalize(localtime.Now()),
		Data:         data,
		PreviousHash: previous,
		Proposer:     proposer,
	}
	bl.BlockHash = bl.hash()

	return bl
}

// NewGenesisBlock makes the height 0 block with the zero previous hash.
func NewGenesisBlock() Block {
	return NewBlock(base.GenesisHeight, []byte("genesis"), valuehash.ZeroSHA256(), "")
}

func (bl Block) Hash() valuehash.SHA256 {
	return bl.BlockHash
}

func (bl Block) hash() valuehash.SHA256 {
	b := make([]byte, 0, len(bl.Data)+64)
	b = append(b, bl.Height.Bytes()...)
	b = append(b, []byte(localtime.RFC3339(bl.CreatedAt))...)
	b = append(b, bl.Data...)
	b = append(b, bl.PreviousHash.Bytes()...)
	b = append(b, bl.Proposer.Bytes()...)

	return valuehash.NewSHA256(b)
}

func (bl Block) IsValid() error {
	if err := bl.Height.IsValid(); err != nil {
		return InvalidBlockError.Wrap(err)
	}

	if bl.Height > base.GenesisHeight {
		if err := bl.Proposer.IsValid(); err != nil {
			return InvalidBlockError.Wrap(err)
		}
	}

	if !bl.BlockHash.Equal(bl.hash()) {
		return InvalidBlockError.Errorf("block hash does not match block contents")
	}

	return nil
}
