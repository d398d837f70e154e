package mem_test

import (
	"bytes"
	"log"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/mem"
)

func writeImage(size int) (string, []byte) {
	image := make([]byte, size)
	for i := range image {
		image[i] = byte(i * 7)
	}

	path := filepath.Join(GinkgoT().TempDir(), "BACKING_STORE.bin")
	Expect(os.WriteFile(path, image, 0o644)).To(Succeed())

	return path, image
}

var _ = Describe("BackingStore", func() {
	It("should map a file and read pages", func() {
		path, image := writeImage(8192)

		store, err := mem.OpenBackingStore(path, 8192, nil)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		Expect(store.Size()).To(Equal(uint64(8192)))

		page, err := store.Read(1024, 1024)
		Expect(err).NotTo(HaveOccurred())
		Expect(page).To(Equal(image[1024:2048]))
	})

	It("should reject a short file", func() {
		path, _ := writeImage(100)

		_, err := mem.OpenBackingStore(path, 8192, nil)

		Expect(err).To(HaveOccurred())
	})

	It("should use the prefix of a longer file and log it", func() {
		path, image := writeImage(4096)
		buf := new(bytes.Buffer)

		store, err := mem.OpenBackingStore(path, 2048, log.New(buf, "", 0))
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		Expect(store.Size()).To(Equal(uint64(2048)))
		Expect(buf.String()).To(ContainSubstring("using the first 2048"))

		data, err := store.Read(2047, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(image[2047:2048]))

		_, err = store.Read(2048, 1)
		Expect(err).To(MatchError(mem.ErrOutOfRange))
	})

	It("should fail on a missing file", func() {
		_, err := mem.OpenBackingStore(
			filepath.Join(GinkgoT().TempDir(), "missing.bin"), 1024, nil)

		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("should wrap an in-memory image", func() {
		image := []byte{1, 2, 3, 4}

		store, err := mem.NewBackingStore(image, 2)
		Expect(err).NotTo(HaveOccurred())

		data, _ := store.Read(0, 2)
		Expect(data).To(Equal([]byte{1, 2}))
		Expect(store.Close()).To(Succeed())
		Expect(store.Close()).To(Succeed())

		_, err = mem.NewBackingStore(image, 5)
		Expect(err).To(HaveOccurred())
	})
})
