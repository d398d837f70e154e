package tracing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
)

var _ = Describe("LogHook", func() {
	var (
		buf *bytes.Buffer
		m   *mmu.Comp
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)

		m = buildMMU()
		m.AcceptHook(NewLogHook(log.New(buf, "", 0)))
	})

	It("should log page faults", func() {
		_, err := m.Translate(2048 + 3)
		Expect(err).NotTo(HaveOccurred())

		Expect(buf.String()).To(Equal(
			"#1 MMU: page fault, page 2 loaded into frame 0\n"))
	})

	It("should stay quiet on TLB hits", func() {
		_, err := m.Translate(0)
		Expect(err).NotTo(HaveOccurred())
		buf.Reset()

		_, err = m.Translate(1)
		Expect(err).NotTo(HaveOccurred())

		Expect(buf.String()).To(BeEmpty())
	})

	It("should log evictions", func() {
		for page := int32(0); page <= 256; page++ {
			_, err := m.Translate(page * 1024)
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(buf.String()).To(ContainSubstring(
			"#257 MMU: evicted page 0 from frame 0 for page 256\n"))
	})
})
