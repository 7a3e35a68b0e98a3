package cache

import (
	"encoding/binary"

	"github.com/sarchlab/cachesim/mem"
)

// WordBytes is the width of the data word each block carries.
const WordBytes = 4

// A Block is the information that is associated with one cache line: the
// occupancy and dirty flags, the tag of the resident memory block, and a
// copy of one data word. WordAddr remembers which address the word belongs
// to, so a dirty block can be flushed back to the location whose write made
// it dirty.
type Block struct {
	Tag        uint64
	WayID      int
	WordAddr   uint64
	IsOccupied bool
	IsDirty    bool
	Data       [WordBytes]byte
}

// Fill loads the word at addr from the backing store into the block. The
// block becomes occupied and clean. Storage failures cannot happen for
// validated addresses and are treated as programming errors.
func (b *Block) Fill(storage *mem.Storage, addr, tag uint64) {
	data, err := storage.Read(addr, WordBytes)
	if err != nil {
		panic(err)
	}

	copy(b.Data[:], data)
	b.Tag = tag
	b.WordAddr = addr
	b.IsOccupied = true
	b.IsDirty = false
}

// MarkPresent refreshes the occupancy bookkeeping without touching the
// stored word.
func (b *Block) MarkPresent(tag uint64) {
	b.Tag = tag
	b.IsOccupied = true
}

// Overwrite replaces the stored word. The word now belongs to addr. The
// dirty flag is left to the caller, which knows the write policy.
func (b *Block) Overwrite(addr uint64, word uint32) {
	binary.LittleEndian.PutUint32(b.Data[:], word)
	b.WordAddr = addr
}

// Flush writes the stored word back to the backing store at the address
// the word belongs to.
func (b *Block) Flush(storage *mem.Storage) {
	if err := storage.Write(b.WordAddr, b.Data[:]); err != nil {
		panic(err)
	}
}

// Clear resets the block for reuse by a different tag.
func (b *Block) Clear() {
	b.Tag = InvalidTag
	b.WordAddr = 0
	b.IsOccupied = false
	b.IsDirty = false
	b.Data = [WordBytes]byte{}
}

// Word returns the stored word as a little-endian unsigned integer, byte 0
// least significant.
func (b *Block) Word() uint32 {
	return binary.LittleEndian.Uint32(b.Data[:])
}
