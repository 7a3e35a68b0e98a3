package sim

import (
	"encoding/binary"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/trace"
)

// A Builder can build a simulator. The cache geometry options mirror the
// cache builder; the defaults are the reference configuration (16-bit
// addresses, a 1024-bit direct-mapped write-back cache with 64-bit
// blocks).
type Builder struct {
	addressWidth  int
	cacheSizeBits uint64
	blockSizeBits uint64
	associativity int
	writeBack     bool
	preload       bool
	tracers       []trace.Tracer
}

// MakeBuilder creates a builder with default parameter setting.
func MakeBuilder() Builder {
	return Builder{
		addressWidth:  16,
		cacheSizeBits: 1024,
		blockSizeBits: 64,
		associativity: 1,
		writeBack:     true,
		preload:       true,
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

// WithTracer adds a tracer that sees the result of every access.
func (b Builder) WithTracer(t trace.Tracer) Builder {
	b.tracers = append(b.tracers, t)
	return b
}

// WithoutMemoryPreload skips the reference memory pattern, leaving the
// backing store all zero. Useful for wide address spaces.
func (b Builder) WithoutMemoryPreload() Builder {
	b.preload = false
	return b
}

// Build creates the simulator: a backing store covering the address space,
// preloaded with the reference pattern unless disabled, and the cache in
// front of it.
func (b Builder) Build() (*Simulator, error) {
	cacheBuilder := cache.MakeBuilder().
		WithAddressWidth(b.addressWidth).
		WithCacheSize(b.cacheSizeBits).
		WithBlockSize(b.blockSizeBits).
		WithWayAssociativity(b.associativity)

	if b.writeBack {
		cacheBuilder = cacheBuilder.WithWriteBack()
	} else {
		cacheBuilder = cacheBuilder.WithWriteThrough()
	}

	storage := mem.NewStorage(uint64(1) << b.addressWidth)

	c, err := cacheBuilder.WithStorage(storage).Build()
	if err != nil {
		return nil, err
	}

	if b.preload {
		preloadPattern(storage)
	}

	return &Simulator{
		storage: storage,
		cache:   c,
		tracers: b.tracers,
	}, nil
}

// preloadPattern fills the storage with the reference content: every
// aligned word holds its own address, little-endian.
func preloadPattern(storage *mem.Storage) {
	word := make([]byte, cache.WordBytes)

	for addr := uint64(0); addr < storage.Capacity(); addr += cache.WordBytes {
		binary.LittleEndian.PutUint32(word, uint32(addr))
		if err := storage.Write(addr, word); err != nil {
			panic(err)
		}
	}
}
