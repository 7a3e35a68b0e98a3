package mem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem"
)

var _ = Describe("Storage", func() {
	It("should read and write within a single unit", func() {
		storage := mem.NewStorage(4096)
		storage.Write(0, []byte{1, 2, 3, 4})

		res, err := storage.Read(0, 2)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := mem.NewStorage(8192)
		storage.Write(4094, []byte{1, 2, 3, 4})

		res, _ := storage.Read(4094, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read zeros from untouched regions", func() {
		storage := mem.NewStorage(1 * mem.MB)

		res, err := storage.Read(512*mem.KB, 4)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal([]byte{0, 0, 0, 0}))
	})

	It("should reject access beyond the capacity", func() {
		storage := mem.NewStorage(4096)

		err := storage.Write(4095, []byte{1, 2})
		Expect(err).To(HaveOccurred())

		_, err = storage.Read(4093, 4)
		Expect(err).To(HaveOccurred())
	})

	It("should allow access that ends exactly at the capacity", func() {
		storage := mem.NewStorage(4096)

		Expect(storage.Write(4092, []byte{1, 2, 3, 4})).To(Succeed())

		res, err := storage.Read(4092, 4)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})
})
