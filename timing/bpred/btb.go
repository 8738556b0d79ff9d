package bpred

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// btb is a set-associative Branch Target Buffer. Tags and recency live in
// an Akita cache directory whose block size is one instruction, so the set
// index is (pc >> shift) & (sets-1). Targets are stored beside it, indexed
// by (setID * associativity + wayID).
type btb struct {
	sets   int
	assoc  int
	policy Replacement

	directory *akitacache.DirectoryImpl
	targets   []uint64
}

func newBTB(sets, assoc uint32, shift uint, policy Replacement) *btb {
	return &btb{
		sets:   int(sets),
		assoc:  int(assoc),
		policy: policy,
		directory: akitacache.NewDirectory(
			int(sets),
			int(assoc),
			1<<shift,
			akitacache.NewLRUVictimFinder(),
		),
		targets: make([]uint64, sets*assoc),
	}
}

func (b *btb) slot(block *akitacache.Block) int {
	return block.SetID*b.assoc + block.WayID
}

func (b *btb) find(pc uint64) *akitacache.Block {
	block := b.directory.Lookup(0, pc)
	if block == nil || !block.IsValid {
		return nil
	}
	return block
}

// lookup returns the stored target for pc. It never changes recency.
func (b *btb) lookup(pc uint64) (uint64, bool) {
	block := b.find(pc)
	if block == nil {
		return 0, false
	}
	return b.targets[b.slot(block)], true
}

// update records the target of a taken branch. Not-taken outcomes leave
// the buffer untouched, stale target included.
func (b *btb) update(pc, target uint64, taken bool) {
	if !taken {
		return
	}

	if block := b.find(pc); block != nil {
		b.targets[b.slot(block)] = target
		if b.policy == ReplaceLRU {
			b.directory.Visit(block)
		}
		return
	}

	victim := b.directory.FindVictim(pc)
	if victim == nil {
		return
	}

	victim.Tag = pc
	victim.IsValid = true
	victim.IsDirty = false
	b.targets[b.slot(victim)] = target

	// Under FIFO this is the only time an entry moves to the back.
	b.directory.Visit(victim)
}

func (b *btb) reset() {
	b.directory.Reset()
	clear(b.targets)
}

func (b *btb) describe() string {
	return fmt.Sprintf("btb: %d sets x %d associativity, %s replacement\n",
		b.sets, b.assoc, b.policy)
}
