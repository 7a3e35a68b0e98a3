package trace

import (
	"fmt"
	"log"
	"strings"

	"github.com/sarchlab/cachesim/cache"
)

// A Tracer receives the result of every cache access.
type Tracer interface {
	TraceRead(res cache.ReadResult)
	TraceWrite(res cache.WriteResult)
}

// A logTracer renders each access as text, one record per access:
//
//	read miss + replace [addr = 1024, offset = 0, set index = 0, tag = 8,
//	word = 0 (1024 - 1031)]
//	[evict tag 0, in block index 0]
//	[write back (0 - 7)]
//	[-, -, 8]
type logTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a tracer that renders accesses to logger.
func NewLogTracer(logger *log.Logger) Tracer {
	return &logTracer{logger: logger}
}

func (t *logTracer) TraceRead(res cache.ReadResult) {
	t.trace("read", res.AccessResult, false)
}

func (t *logTracer) TraceWrite(res cache.WriteResult) {
	t.trace("write", res.AccessResult, res.WroteThrough)
}

func (t *logTracer) trace(op string, res cache.AccessResult, wroteThrough bool) {
	hitOrMiss := "miss"
	if res.Hit {
		hitOrMiss = "hit"
	}

	headline := op + " " + hitOrMiss
	if res.Eviction != nil {
		headline += " + replace"
	}

	t.logger.Printf("%s [addr = %d, offset = %d, set index = %d, "+
		"tag = %d, word = %d (%d - %d)]\n",
		headline, res.Address, res.Offset, res.SetID, res.Tag, res.Word,
		res.BlockRange.Low, res.BlockRange.High)

	if res.Eviction != nil {
		t.logger.Printf("[evict tag %d, in block index %d]\n",
			res.Eviction.Tag, res.Eviction.WayID)
	}

	if res.WriteBack != nil {
		t.logger.Printf("[write back (%d - %d)]\n",
			res.WriteBack.Range.Low, res.WriteBack.Range.High)
	}

	if wroteThrough {
		t.logger.Printf("[write through (%d - %d)]\n",
			res.BlockRange.Low, res.BlockRange.High)
	}

	t.logger.Printf("%s\n", formatLRUOrder(res.LRUOrder))
}

func formatLRUOrder(order []uint64) string {
	parts := make([]string, len(order))
	for i, tag := range order {
		if tag == cache.InvalidTag {
			parts[i] = "-"
			continue
		}

		parts[i] = fmt.Sprintf("%d", tag)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// An accessEntry is one cache access in the database.
type accessEntry struct {
	Op           string
	Hit          bool
	Address      uint64
	Offset       uint64
	SetID        int
	Tag          uint64
	Word         uint32
	RangeLow     uint64
	RangeHigh    uint64
	Evicted      bool
	EvictedTag   uint64
	EvictedWay   int
	WroteBack    bool
	FlushLow     uint64
	FlushHigh    uint64
	WroteThrough bool
}

// A dbTracer records each access as one row through a Recorder.
type dbTracer struct {
	recorder Recorder
}

// NewDBTracer creates a tracer that records accesses into recorder under
// the cache_accesses table.
func NewDBTracer(recorder Recorder) Tracer {
	recorder.CreateTable("cache_accesses", accessEntry{})

	return &dbTracer{recorder: recorder}
}

func (t *dbTracer) TraceRead(res cache.ReadResult) {
	t.record("read", res.AccessResult, false)
}

func (t *dbTracer) TraceWrite(res cache.WriteResult) {
	t.record("write", res.AccessResult, res.WroteThrough)
}

func (t *dbTracer) record(op string, res cache.AccessResult, wroteThrough bool) {
	entry := accessEntry{
		Op:           op,
		Hit:          res.Hit,
		Address:      res.Address,
		Offset:       res.Offset,
		SetID:        res.SetID,
		Tag:          res.Tag,
		Word:         res.Word,
		RangeLow:     res.BlockRange.Low,
		RangeHigh:    res.BlockRange.High,
		WroteThrough: wroteThrough,
	}

	if res.Eviction != nil {
		entry.Evicted = true
		entry.EvictedTag = res.Eviction.Tag
		entry.EvictedWay = res.Eviction.WayID
	}

	if res.WriteBack != nil {
		entry.WroteBack = true
		entry.FlushLow = res.WriteBack.Range.Low
		entry.FlushHigh = res.WriteBack.Range.High
	}

	t.recorder.InsertData("cache_accesses", entry)
}
