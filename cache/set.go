package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem"
)

// A Set is one associative bucket: a fixed group of blocks that any address
// with the set's index may occupy, plus the LRU queue that orders them.
type Set struct {
	ID int

	blocks     []Block
	lru        *lruQueue
	storage    *mem.Storage
	blockBytes uint64
	writeBack  bool
}

func newSet(
	id int,
	associativity int,
	blockBytes uint64,
	writeBack bool,
	storage *mem.Storage,
) Set {
	s := Set{
		ID:         id,
		blocks:     make([]Block, associativity),
		lru:        newLRUQueue(associativity),
		storage:    storage,
		blockBytes: blockBytes,
		writeBack:  writeBack,
	}

	for i := range s.blocks {
		s.blocks[i].WayID = i
		s.blocks[i].Tag = InvalidTag
	}

	return s
}

// FindWay returns the way that holds tag, scanning occupied blocks only.
func (s *Set) FindWay(tag uint64) (int, bool) {
	for i := range s.blocks {
		if s.blocks[i].IsOccupied && s.blocks[i].Tag == tag {
			return i, true
		}
	}

	return 0, false
}

func (s *Set) freeWay() (int, bool) {
	for i := range s.blocks {
		if !s.blocks[i].IsOccupied {
			return i, true
		}
	}

	return 0, false
}

// resolve makes tag resident. On a hit it refreshes the block's
// bookkeeping. On a miss it fills a free block, or evicts the least
// recently used one, flushing it first if the write policy deferred its
// store. Either way the LRU queue is touched exactly once.
func (s *Set) resolve(
	addr, tag uint64,
) (way int, hit bool, ev *Eviction, wb *WriteBack) {
	if way, ok := s.FindWay(tag); ok {
		s.blocks[way].MarkPresent(tag)
		s.lru.Touch(tag)

		return way, true, nil, nil
	}

	way, ok := s.freeWay()
	if !ok {
		victimTag := s.lru.LeastRecentlyUsed()

		way, ok = s.FindWay(victimTag)
		if !ok {
			panic(fmt.Sprintf(
				"set %d is full but does not hold LRU tag %d",
				s.ID, victimTag))
		}

		victim := &s.blocks[way]
		if s.writeBack && victim.IsDirty {
			victim.Flush(s.storage)
			wb = &WriteBack{
				Address: victim.WordAddr,
				Range:   s.blockRange(victim.WordAddr),
			}
		}

		ev = &Eviction{Tag: victimTag, WayID: way}
		victim.Clear()
	}

	s.blocks[way].Fill(s.storage, addr, tag)
	s.lru.Touch(tag)

	return way, false, ev, wb
}

// Read returns the word at addr, fetching the line from memory on a miss.
func (s *Set) Read(addr, tag, offset uint64) ReadResult {
	way, hit, ev, wb := s.resolve(addr, tag)

	return ReadResult{
		AccessResult: s.accessResult(
			addr, tag, offset, hit, s.blocks[way].Word(), ev, wb),
	}
}

// Write stores word at addr. A miss allocates the line first, exactly like
// a read miss, before the word is applied. Write-through stores to memory
// immediately; write-back only marks the block dirty.
func (s *Set) Write(addr, tag, offset uint64, word uint32) WriteResult {
	way, hit, ev, wb := s.resolve(addr, tag)

	block := &s.blocks[way]
	block.Overwrite(addr, word)

	wroteThrough := false
	if s.writeBack {
		block.IsDirty = true
	} else {
		block.Flush(s.storage)
		wroteThrough = true
	}

	return WriteResult{
		AccessResult: s.accessResult(
			addr, tag, offset, hit, block.Word(), ev, wb),
		WroteThrough: wroteThrough,
	}
}

func (s *Set) blockRange(addr uint64) Range {
	low := addr / s.blockBytes * s.blockBytes

	return Range{Low: low, High: low + s.blockBytes - 1}
}

func (s *Set) accessResult(
	addr, tag, offset uint64,
	hit bool,
	word uint32,
	ev *Eviction,
	wb *WriteBack,
) AccessResult {
	return AccessResult{
		Hit:        hit,
		Address:    addr,
		Offset:     offset,
		SetID:      s.ID,
		Tag:        tag,
		Word:       word,
		BlockRange: s.blockRange(addr),
		Eviction:   ev,
		WriteBack:  wb,
		LRUOrder:   s.lru.Order(),
	}
}
