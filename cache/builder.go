package cache

import (
	"fmt"
	"math/bits"

	"github.com/sarchlab/cachesim/mem"
)

// A Builder can build a cache. Sizes follow the hardware convention of the
// configuration surface: cache and block sizes are given in bits, while
// all addressing is in bytes.
type Builder struct {
	addressWidth  int
	cacheSizeBits uint64
	blockSizeBits uint64
	associativity int
	writeBack     bool
	storage       *mem.Storage
}

// MakeBuilder creates a builder with default parameter setting: 16-bit
// addresses, a 1024-bit direct-mapped write-back cache with 64-bit blocks.
func MakeBuilder() Builder {
	return Builder{
		addressWidth:  16,
		cacheSizeBits: 1024,
		blockSizeBits: 64,
		associativity: 1,
		writeBack:     true,
	}
}

// WithAddressWidth sets the width of memory addresses in bits.
func (b Builder) WithAddressWidth(bits int) Builder {
	b.addressWidth = bits
	return b
}

// WithCacheSize sets the total capacity of the cache in bits.
func (b Builder) WithCacheSize(sizeInBit uint64) Builder {
	b.cacheSizeBits = sizeInBit
	return b
}

// WithBlockSize sets the size of each cache block in bits.
func (b Builder) WithBlockSize(sizeInBit uint64) Builder {
	b.blockSizeBits = sizeInBit
	return b
}

// WithWayAssociativity sets the number of blocks per set.
func (b Builder) WithWayAssociativity(n int) Builder {
	b.associativity = n
	return b
}

// WithWriteBack makes the cache defer stores until eviction.
func (b Builder) WithWriteBack() Builder {
	b.writeBack = true
	return b
}

// WithWriteThrough makes the cache store to memory on every write.
func (b Builder) WithWriteThrough() Builder {
	b.writeBack = false
	return b
}

// WithStorage sets the backing store the cache fetches from and flushes
// to. Without one, Build creates a storage covering the address space.
func (b Builder) WithStorage(storage *mem.Storage) Builder {
	b.storage = storage
	return b
}

// Build creates the cache. A configuration that does not describe a valid
// geometry fails with a descriptive error and no cache is returned.
func (b Builder) Build() (*Cache, error) {
	if err := b.validateGeometry(); err != nil {
		return nil, err
	}

	blockBytes := b.blockSizeBits / 8
	numBlocks := b.cacheSizeBits / b.blockSizeBits
	numSets := int(numBlocks) / b.associativity

	log2BlockBytes := uint64(bits.TrailingZeros64(blockBytes))
	log2NumSets := uint64(bits.TrailingZeros64(uint64(numSets)))

	tagWidth := b.addressWidth - int(log2NumSets) - int(log2BlockBytes)
	if tagWidth < 0 {
		return nil, fmt.Errorf(
			"index and offset fields need %d bits, more than the %d-bit address",
			int(log2NumSets)+int(log2BlockBytes), b.addressWidth)
	}

	storage := b.storage
	if storage == nil {
		storage = mem.NewStorage(uint64(1) << b.addressWidth)
	} else if storage.Capacity() < uint64(1)<<b.addressWidth {
		return nil, fmt.Errorf(
			"storage capacity 0x%x cannot back a %d-bit address space",
			storage.Capacity(), b.addressWidth)
	}

	c := &Cache{
		addressWidth:  b.addressWidth,
		writeBack:     b.writeBack,
		numSets:       numSets,
		associativity: b.associativity,
		blockBytes:    blockBytes,
		splitter: addressSplitter{
			log2BlockBytes: log2BlockBytes,
			log2NumSets:    log2NumSets,
		},
		storage: storage,
	}

	c.sets = make([]Set, numSets)
	for i := range c.sets {
		c.sets[i] = newSet(i, b.associativity, blockBytes, b.writeBack, storage)
	}

	return c, nil
}

func (b Builder) validateGeometry() error {
	if b.addressWidth <= 0 || b.addressWidth > 63 {
		return fmt.Errorf(
			"address width must be in (0, 63], not %d", b.addressWidth)
	}

	if b.associativity <= 0 {
		return fmt.Errorf(
			"way associativity must be positive, not %d", b.associativity)
	}

	if b.blockSizeBits == 0 || b.blockSizeBits%8 != 0 {
		return fmt.Errorf(
			"block size must be a positive multiple of 8 bits, not %d",
			b.blockSizeBits)
	}

	blockBytes := b.blockSizeBits / 8
	if blockBytes < WordBytes {
		return fmt.Errorf(
			"a %d-bit block cannot hold a %d-byte word",
			b.blockSizeBits, WordBytes)
	}

	if bits.OnesCount64(blockBytes) != 1 {
		return fmt.Errorf(
			"block size must be a power of two bytes, not %d", blockBytes)
	}

	if b.cacheSizeBits == 0 || b.cacheSizeBits%b.blockSizeBits != 0 {
		return fmt.Errorf(
			"cache size %d bits is not divisible into %d-bit blocks",
			b.cacheSizeBits, b.blockSizeBits)
	}

	numBlocks := b.cacheSizeBits / b.blockSizeBits
	if numBlocks%uint64(b.associativity) != 0 {
		return fmt.Errorf(
			"%d blocks cannot form %d-way sets",
			numBlocks, b.associativity)
	}

	numSets := numBlocks / uint64(b.associativity)
	if bits.OnesCount64(numSets) != 1 {
		return fmt.Errorf(
			"number of sets must be a power of two, not %d", numSets)
	}

	return nil
}
