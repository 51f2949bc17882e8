package consensus

import (
	"github.com/fahertym/intercooperative-network/base"
	"github.com/fahertym/intercooperative-network/util"
)

var NotInSequenceError = util.NewError("block not in sequence")

// Chain is the ordered run of finalized blocks, height 0 is genesis.
// Heights are contiguous and every block points at the hash of the one
// before it; Append refuses anything else.
type Chain struct {
	blocks []Block
}

func NewChain() *Chain {
	return &Chain{blocks: []Block{NewGenesisBlock()}}
}

func (ch *Chain) Tip() Block {
	return ch.blocks[len(ch.blocks)-1]
}

func (ch *Chain) Len() int {
	return len(ch.blocks)
}

func (ch *Chain) Block(height base.Height) (Block, bool) {
	if height < 0 || int(height) >= len(ch.blocks) {
		return Block{}, false
	}

	return ch.blocks[height], true
}

func (ch *Chain) Blocks() []Block {
	bs := make([]Block, len(ch.blocks))
	copy(bs, ch.blocks)

	return bs
}

func (ch *Chain) Append(bl Block) error {
	tip := ch.Tip()

	if bl.Height != tip.Height+1 {
		return NotInSequenceError.Errorf("height=%d tip=%d", bl.Height, tip.Height)
	}

	if !bl.PreviousHash.Equal(tip.Hash()) {
		return NotInSequenceError.Errorf("previous hash does not match tip hash; height=%d", bl.Height)
	}

	ch.blocks = append(ch.blocks, bl)

	return nil
}

// IsValid walks the whole chain checking hashes and contiguity.
func (ch *Chain) IsValid() error {
	for i := range ch.blocks {
		bl := ch.blocks[i]
		if err := bl.IsValid(); err != nil {
			return err
		}

		if bl.Height != base.Height(i) {
			return NotInSequenceError.Errorf("height=%d at position %d", bl.Height, i)
		}

		if i > 0 && !bl.PreviousHash.Equal(ch.blocks[i-1].Hash()) {
			return NotInSequenceError.Errorf("broken previous hash at height=%d", bl.Height)
		}
	}

	return nil
}
