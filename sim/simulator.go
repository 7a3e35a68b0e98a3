// Package sim drives a cache model through scripted sequences of reads and
// writes, fanning each result out to the configured tracers.
package sim

import (
	"fmt"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/mem"
	"github.com/sarchlab/cachesim/trace"
)

// An OpKind tells a read from a write.
type OpKind int

// The operation kinds a script can contain.
const (
	ReadOp OpKind = iota
	WriteOp
)

// An Op is one scripted cache access. Word is only meaningful for writes.
type Op struct {
	Kind OpKind
	Addr uint64
	Word uint32
}

// A Simulator owns one cache and its backing store and replays accesses
// against them. It is single threaded: each operation completes before the
// next starts, and one Simulator never shares state with another.
type Simulator struct {
	storage *mem.Storage
	cache   *cache.Cache
	tracers []trace.Tracer
}

// Cache returns the simulated cache.
func (s *Simulator) Cache() *cache.Cache {
	return s.cache
}

// Storage returns the backing store.
func (s *Simulator) Storage() *mem.Storage {
	return s.storage
}

// Read performs one read access and traces the result.
func (s *Simulator) Read(addr uint64) (cache.ReadResult, error) {
	res, err := s.cache.Read(addr)
	if err != nil {
		return cache.ReadResult{}, err
	}

	for _, t := range s.tracers {
		t.TraceRead(res)
	}

	return res, nil
}

// Write performs one write access and traces the result.
func (s *Simulator) Write(addr uint64, word uint32) (cache.WriteResult, error) {
	res, err := s.cache.Write(addr, word)
	if err != nil {
		return cache.WriteResult{}, err
	}

	for _, t := range s.tracers {
		t.TraceWrite(res)
	}

	return res, nil
}

// Run replays ops in order, stopping at the first rejected operation.
func (s *Simulator) Run(ops []Op) error {
	for i, op := range ops {
		var err error

		switch op.Kind {
		case ReadOp:
			_, err = s.Read(op.Addr)
		case WriteOp:
			_, err = s.Write(op.Addr, op.Word)
		default:
			err = fmt.Errorf("unknown operation kind %d", op.Kind)
		}

		if err != nil {
			return fmt.Errorf("op %d (addr 0x%x): %w", i, op.Addr, err)
		}
	}

	return nil
}
