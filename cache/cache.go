// Package cache models a set-associative hardware cache in front of a
// byte-addressable backing store. The model is functional, not timed: each
// read or write runs to completion and reports exactly what a cache
// controller would have done, including LRU evictions and write-back
// flushes.
package cache

import (
	"errors"

	"github.com/sarchlab/cachesim/mem"
)

// Precondition violations reported before any state is mutated.
var (
	ErrAddressOutOfRange = errors.New("address is beyond the address space")
	ErrUnalignedAddress  = errors.New("address is not aligned to the word size")
)

// A Cache owns one set per index value and routes each access to the set
// its address selects. The configuration is fixed at build time.
type Cache struct {
	addressWidth  int
	writeBack     bool
	numSets       int
	associativity int
	blockBytes    uint64

	splitter addressSplitter
	sets     []Set
	storage  *mem.Storage
}

// NumSets returns the number of sets in the cache.
func (c *Cache) NumSets() int {
	return c.numSets
}

// WayAssociativity returns the number of blocks per set.
func (c *Cache) WayAssociativity() int {
	return c.associativity
}

// TotalSize returns the maximum number of bytes the cache can hold.
func (c *Cache) TotalSize() uint64 {
	return uint64(c.numSets) * uint64(c.associativity) * c.blockBytes
}

// IsWriteBack reports whether the cache defers stores until eviction.
func (c *Cache) IsWriteBack() bool {
	return c.writeBack
}

// TagWidth returns the number of address bits in a tag.
func (c *Cache) TagWidth() int {
	return c.addressWidth -
		int(c.splitter.log2NumSets) - int(c.splitter.log2BlockBytes)
}

func (c *Cache) validateAddress(addr uint64) error {
	if addr >= uint64(1)<<c.addressWidth {
		return ErrAddressOutOfRange
	}

	if addr%WordBytes != 0 {
		return ErrUnalignedAddress
	}

	return nil
}

// Read returns the word at addr, fetching from memory on a miss. The
// address must be word aligned and within the address space; violations
// are rejected before any state changes.
func (c *Cache) Read(addr uint64) (ReadResult, error) {
	if err := c.validateAddress(addr); err != nil {
		return ReadResult{}, err
	}

	offset, setID, tag := c.splitter.Split(addr)

	return c.sets[setID].Read(addr, tag, offset), nil
}

// Write stores word at addr, allocating the line on a miss. The same
// address preconditions as Read apply.
func (c *Cache) Write(addr uint64, word uint32) (WriteResult, error) {
	if err := c.validateAddress(addr); err != nil {
		return WriteResult{}, err
	}

	offset, setID, tag := c.splitter.Split(addr)

	return c.sets[setID].Write(addr, tag, offset, word), nil
}
