package cache

import "math"

// InvalidTag marks an unoccupied slot in an LRU queue and the tag of a
// cleared block. It can never collide with a real tag since tags are
// strictly narrower than 64 bits.
const InvalidTag uint64 = math.MaxUint64

// An addressSplitter decomposes a flat address into the offset within a
// block, the set index, and the tag. The geometry is fixed at build time,
// after the builder has verified that both the block byte count and the
// number of sets are powers of two.
type addressSplitter struct {
	log2BlockBytes uint64
	log2NumSets    uint64
}

// Split decomposes addr. It holds for every address that
// tag<<(log2NumSets+log2BlockBytes) | setID<<log2BlockBytes | offset == addr.
func (s addressSplitter) Split(addr uint64) (offset, setID, tag uint64) {
	offset = addr & ((1 << s.log2BlockBytes) - 1)
	setID = (addr >> s.log2BlockBytes) & ((1 << s.log2NumSets) - 1)
	tag = addr >> (s.log2BlockBytes + s.log2NumSets)

	return
}
