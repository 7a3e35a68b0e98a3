package cache

// A Range is an inclusive span of byte addresses.
type Range struct {
	Low  uint64
	High uint64
}

// An Eviction describes the block a miss pushed out of its set.
type Eviction struct {
	Tag   uint64
	WayID int
}

// A WriteBack describes a deferred store that an eviction forced back to
// memory: the address of the flushed word and the byte range of the block
// it belongs to.
type WriteBack struct {
	Address uint64
	Range   Range
}

// An AccessResult describes what one read or write did to the cache. The
// eviction and write-back fields are nil when the access did not replace a
// block or flush one. LRUOrder is the accessed set's full recency order
// after the access, oldest first, with InvalidTag in slots that no tag
// occupies yet.
type AccessResult struct {
	Hit        bool
	Address    uint64
	Offset     uint64
	SetID      int
	Tag        uint64
	Word       uint32
	BlockRange Range
	Eviction   *Eviction
	WriteBack  *WriteBack
	LRUOrder   []uint64
}

// A ReadResult is the outcome of a Cache.Read.
type ReadResult struct {
	AccessResult
}

// A WriteResult is the outcome of a Cache.Write. WroteThrough reports
// whether this write itself stored to memory, which only happens in
// write-through mode. Flushes forced by the allocation step are reported
// through WriteBack instead.
type WriteResult struct {
	AccessResult

	WroteThrough bool
}
