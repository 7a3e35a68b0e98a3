package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem"
)

var _ = Describe("Block", func() {
	var (
		storage *mem.Storage
		block   *Block
	)

	BeforeEach(func() {
		storage = mem.NewStorage(1 << 16)
		storage.Write(0x20, []byte{0x0d, 0x0c, 0x0b, 0x0a})

		block = &Block{WayID: 1, Tag: InvalidTag}
	})

	It("should fill from the backing store", func() {
		block.Fill(storage, 0x20, 4)

		Expect(block.IsOccupied).To(BeTrue())
		Expect(block.IsDirty).To(BeFalse())
		Expect(block.Tag).To(Equal(uint64(4)))
		Expect(block.WordAddr).To(Equal(uint64(0x20)))
		Expect(block.Word()).To(Equal(uint32(0x0a0b0c0d)))
	})

	It("should expose the word little-endian, byte 0 least significant", func() {
		block.Fill(storage, 0x20, 4)

		Expect(block.Data).To(Equal([WordBytes]byte{0x0d, 0x0c, 0x0b, 0x0a}))
		Expect(block.Word()).To(Equal(uint32(0x0a0b0c0d)))
	})

	It("should overwrite the word without touching the flags", func() {
		block.Fill(storage, 0x20, 4)
		block.Overwrite(0x20, 42)

		Expect(block.Word()).To(Equal(uint32(42)))
		Expect(block.IsDirty).To(BeFalse())
		Expect(block.IsOccupied).To(BeTrue())
	})

	It("should flush the word back to where it belongs", func() {
		block.Fill(storage, 0x20, 4)
		block.Overwrite(0x20, 42)
		block.Flush(storage)

		data, err := storage.Read(0x20, WordBytes)
		Expect(err).ToNot(HaveOccurred())
		Expect(data).To(Equal([]byte{42, 0, 0, 0}))
	})

	It("should clear for reuse", func() {
		block.Fill(storage, 0x20, 4)
		block.IsDirty = true

		block.Clear()

		Expect(block.IsOccupied).To(BeFalse())
		Expect(block.IsDirty).To(BeFalse())
		Expect(block.Tag).To(Equal(InvalidTag))
		Expect(block.Data).To(Equal([WordBytes]byte{}))
		Expect(block.WayID).To(Equal(1))
	})
})
