package cache

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem"
)

// Geometry used throughout: 8-byte blocks, 16 sets. Addresses 0, 128, 256,
// ... all land in set 0, with tags 0, 1, 2, ...
var _ = Describe("Set", func() {
	var (
		storage *mem.Storage
		set     Set
	)

	writeWord := func(addr uint64, word uint32) {
		data := make([]byte, WordBytes)
		binary.LittleEndian.PutUint32(data, word)
		storage.Write(addr, data)
	}

	readWord := func(addr uint64) uint32 {
		data, err := storage.Read(addr, WordBytes)
		Expect(err).ToNot(HaveOccurred())
		return binary.LittleEndian.Uint32(data)
	}

	BeforeEach(func() {
		storage = mem.NewStorage(1 << 16)
		writeWord(0, 100)
		writeWord(128, 200)
		writeWord(256, 300)

		set = newSet(0, 2, 8, true, storage)
	})

	It("should miss on an empty set and fill a free block", func() {
		res := set.Read(0, 0, 0)

		Expect(res.Hit).To(BeFalse())
		Expect(res.Word).To(Equal(uint32(100)))
		Expect(res.Eviction).To(BeNil())
		Expect(res.WriteBack).To(BeNil())
		Expect(res.LRUOrder).To(Equal([]uint64{InvalidTag, 0}))
	})

	It("should hit on a resident tag", func() {
		set.Read(0, 0, 0)

		res := set.Read(0, 0, 0)

		Expect(res.Hit).To(BeTrue())
		Expect(res.Word).To(Equal(uint32(100)))
	})

	It("should fill all free blocks before evicting", func() {
		set.Read(0, 0, 0)
		res := set.Read(128, 1, 0)

		Expect(res.Hit).To(BeFalse())
		Expect(res.Eviction).To(BeNil())
		Expect(res.LRUOrder).To(Equal([]uint64{0, 1}))
	})

	It("should evict the least recently used block when full", func() {
		set.Read(0, 0, 0)
		set.Read(128, 1, 0)

		res := set.Read(256, 2, 0)

		Expect(res.Hit).To(BeFalse())
		Expect(res.Word).To(Equal(uint32(300)))
		Expect(res.Eviction).ToNot(BeNil())
		Expect(res.Eviction.Tag).To(Equal(uint64(0)))
		Expect(res.Eviction.WayID).To(Equal(0))
		Expect(res.WriteBack).To(BeNil())
		Expect(res.LRUOrder).To(Equal([]uint64{1, 2}))
	})

	It("should let a hit refresh the eviction order", func() {
		set.Read(0, 0, 0)
		set.Read(128, 1, 0)
		set.Read(0, 0, 0)

		res := set.Read(256, 2, 0)

		Expect(res.Eviction.Tag).To(Equal(uint64(1)))
	})

	Context("in write-back mode", func() {
		It("should mark the block dirty without storing", func() {
			res := set.Write(0, 0, 0, 7)

			Expect(res.Hit).To(BeFalse())
			Expect(res.Word).To(Equal(uint32(7)))
			Expect(res.WroteThrough).To(BeFalse())
			Expect(readWord(0)).To(Equal(uint32(100)))

			way, ok := set.FindWay(0)
			Expect(ok).To(BeTrue())
			Expect(set.blocks[way].IsDirty).To(BeTrue())
		})

		It("should flush a dirty victim to the dirtied address", func() {
			set.Write(0, 0, 0, 7)
			set.Read(128, 1, 0)

			res := set.Read(256, 2, 0)

			Expect(res.Eviction.Tag).To(Equal(uint64(0)))
			Expect(res.WriteBack).ToNot(BeNil())
			Expect(res.WriteBack.Address).To(Equal(uint64(0)))
			Expect(res.WriteBack.Range).To(Equal(Range{Low: 0, High: 7}))
			Expect(readWord(0)).To(Equal(uint32(7)))
		})

		It("should not flush a clean victim", func() {
			set.Read(0, 0, 0)
			set.Read(128, 1, 0)

			res := set.Read(256, 2, 0)

			Expect(res.WriteBack).To(BeNil())
			Expect(readWord(0)).To(Equal(uint32(100)))
		})

		It("should fetch the line on a write miss before overwriting", func() {
			set.Write(0, 0, 0, 7)
			set.Write(128, 1, 0, 8)

			res := set.Write(256, 2, 0, 9)

			Expect(res.Hit).To(BeFalse())
			Expect(res.Eviction.Tag).To(Equal(uint64(0)))
			Expect(res.WriteBack).ToNot(BeNil())
			Expect(readWord(0)).To(Equal(uint32(7)))
			Expect(readWord(256)).To(Equal(uint32(300)))
		})

		It("should refresh the eviction order on a write hit", func() {
			set.Read(0, 0, 0)
			set.Read(128, 1, 0)
			set.Write(0, 0, 0, 7)

			res := set.Read(256, 2, 0)

			Expect(res.Eviction.Tag).To(Equal(uint64(1)))
		})
	})

	Context("in write-through mode", func() {
		BeforeEach(func() {
			set = newSet(0, 2, 8, false, storage)
		})

		It("should store to memory immediately", func() {
			res := set.Write(0, 0, 0, 7)

			Expect(res.WroteThrough).To(BeTrue())
			Expect(readWord(0)).To(Equal(uint32(7)))

			way, ok := set.FindWay(0)
			Expect(ok).To(BeTrue())
			Expect(set.blocks[way].IsDirty).To(BeFalse())
		})

		It("should never flush on eviction", func() {
			set.Write(0, 0, 0, 7)
			set.Write(128, 1, 0, 8)

			res := set.Write(256, 2, 0, 9)

			Expect(res.Eviction).ToNot(BeNil())
			Expect(res.WriteBack).To(BeNil())
			Expect(readWord(0)).To(Equal(uint32(7)))
		})
	})
})
